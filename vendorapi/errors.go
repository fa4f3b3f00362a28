package vendorapi

import (
	"errors"
	"fmt"
)

// ErrUnavailable means no response was received from the vendor at all
// (connection refused, timeout, DNS failure). It is retryable.
var ErrUnavailable = errors.New("vendor api is not responding")

// CodeUnavailable is the error code recorded for ErrUnavailable failures.
const CodeUnavailable = "VENDOR_UNAVAILABLE"

// APIError is a structured error response from the vendor. Status >= 500 is
// treated as transient and retried; anything else propagates immediately.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vendor api error (status %d, code %s): %s", e.Status, e.Code, e.Message)
}

// retryable reports whether err is worth another attempt: either the vendor
// never responded, or it responded with a server-side failure.
func retryable(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return false
}
