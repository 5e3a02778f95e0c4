package handlers

// Stable machine-readable error codes carried in every error envelope.
// Clients branch on these rather than parsing messages. Generic codes
// mirror HTTP status semantics; the operation-specific ones distinguish
// which broker operation failed when the status alone is ambiguous.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodePublishFailed    = "publish_failed"
	ErrCodeReceiveFailed    = "receive_failed"
	ErrCodeAckFailed        = "ack_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
