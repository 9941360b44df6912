package handlers

// Stable error codes for the "code" field of ErrorResponse. Clients branch
// on these, so renaming one is a breaking API change. The generic ones
// mirror the HTTP status; the rest carry business outcomes the status alone
// cannot express, like a payment the gateway settled as failed.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodePaymentFailed    = "payment_failed"    // gateway settled the payment unsuccessfully
	ErrCodeDependencyFailed = "dependency_failed" // gateway or mail provider unreachable
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
