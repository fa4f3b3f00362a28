package trading

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/tradedesk/market"
	"github.com/rustyeddy/tradedesk/vendorapi"
)

// Error codes written to failed ledger records and surfaced to clients.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeDeviationExceeded = "PRICE_DEVIATION_EXCEEDED"
	CodeInternal          = "INTERNAL_ERROR"
)

// DeviationError is the business-rule rejection: the requested price sits
// too far from the catalog price. Deviation carries the full-precision value.
type DeviationError struct {
	Deviation  float64
	MaxAllowed float64
	Requested  float64
	Current    float64
}

func (e *DeviationError) Error() string {
	return fmt.Sprintf(
		"price deviation of %.2f%% exceeds maximum allowed %g%%. Current price: $%v, Requested price: $%v",
		e.Deviation, e.MaxAllowed, e.Current, e.Requested,
	)
}

// errorCode maps a pipeline failure to the code recorded in the ledger.
func errorCode(err error) string {
	var devErr *DeviationError
	if errors.As(err, &devErr) {
		return CodeDeviationExceeded
	}
	if errors.Is(err, market.ErrNotFound) {
		return CodeNotFound
	}
	if errors.Is(err, vendorapi.ErrUnavailable) {
		return vendorapi.CodeUnavailable
	}
	var apiErr *vendorapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeInternal
}
