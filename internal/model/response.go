package model

// ErrorResponse is the envelope for every failed request: a single
// human-readable field, with the underlying detail logged server-side only.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the envelope for successful mutations that return no
// resource body.
type MessageResponse struct {
	Message string `json:"message"`
}
