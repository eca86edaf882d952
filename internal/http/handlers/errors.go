// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants are mapped to error responses via the `fail()`
// helper in this package. They give clients a stable, machine-readable
// taxonomy to branch on, supplementing the human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - Generic codes (bad_request, not_found, ...) mirror HTTP status
//     semantics; domain-specific codes cover failures status alone cannot
//     convey.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeWebhookSetup     = "webhook_setup_failed"
)
