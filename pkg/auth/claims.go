package auth

import (
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the stable caller identity the authentication layer
// supplies. A zero Identity means no user is bound.
type Identity struct {
	UserID string
	Role   enums.Role
	// Token is the raw bearer credential, forwarded verbatim to the
	// remote gateway.
	Token string
}

// IsZero reports whether no identity is bound.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// IsAdmin reports whether the identity carries the administrative role.
func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

// AccessTokenPayload carries the fields minted into an access token.
type AccessTokenPayload struct {
	UserID string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims is the JWT claim set shared by the storefront and
// the gateway.
type AccessTokenClaims struct {
	UserID string     `json:"uid"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts parsed claims into the caller identity, keeping
// the raw token for gateway pass-through.
func (c *AccessTokenClaims) Identity(rawToken string) Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{
		UserID: c.UserID,
		Role:   c.Role,
		Token:  rawToken,
	}
}
