// Package approval implements the request lifecycle: intake of a form
// submission, the admin's decision and explanation over Telegram, and the
// resolution the submitter polls for. This file centralizes the
// service-level error values so handlers can map them to HTTP results
// consistently.
package approval

import "errors"

var (
	// ErrInvalidLicense indicates the submitted license code failed registry
	// lookup. Reported to the submitter as a soft failure, never a 5xx.
	ErrInvalidLicense = errors.New("invalid license")

	// ErrDeliveryFailed indicates the admin notification could not be sent.
	// Also a soft failure: the submitter is asked to retry, the process
	// carries on.
	ErrDeliveryFailed = errors.New("delivery to admin channel failed")
)
