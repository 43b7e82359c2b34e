// Package handlers defines HTTP-layer error codes used across all API
// endpoints. The codes give clients a stable, machine-readable taxonomy
// supplementing the human-readable message; handlers pass them to fail()
// along with the HTTP status.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
