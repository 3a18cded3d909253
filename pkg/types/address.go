package types

import "strings"

// Address is the shipping destination captured at order creation.
type Address struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	Line1       string  `json:"line1" validate:"required"`
	City        string  `json:"city" validate:"required"`
	State       string  `json:"state" validate:"required"`
	PostalCode  string  `json:"postal_code" validate:"required"`
	Country     string  `json:"country" validate:"required"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// IsZero reports whether no address was supplied.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Line1) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.PostalCode) == ""
}
