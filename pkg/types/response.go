package types

// SuccessEnvelope wraps every successful storefront response. Views
// unwrap the data field and never see envelope internals.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries one taxonomy code plus a message safe to render.
// Details is populated only for codes that allow structured hints,
// such as the from/to pair on a rejected status transition.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
