package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rustyeddy/tradedesk/market"
	"github.com/rustyeddy/tradedesk/trading"
	"github.com/rustyeddy/tradedesk/vendorapi"
)

// Responses use the same envelope the upstream vendor does:
// {status, data} on success, {status, error:{message, code, details}} on
// failure.

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"data":   data,
	})
}

func writeErrorBody(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"error":  body,
	})
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeValidationError(w http.ResponseWriter, fields []fieldError) {
	writeErrorBody(w, http.StatusBadRequest, errorBody{
		Message: "Validation failed",
		Code:    "VALIDATION_ERROR",
		Details: fields,
	})
}

// writeError maps a pipeline error to an HTTP response. Upstream error
// bodies are never passed through verbatim; clients get a stable message per
// error kind.
func writeError(w http.ResponseWriter, err error) {
	var devErr *trading.DeviationError
	if errors.As(err, &devErr) {
		writeErrorBody(w, http.StatusBadRequest, errorBody{
			Message: fmt.Sprintf(
				"Price deviation of %.2f%% exceeds maximum allowed %g%%",
				devErr.Deviation, devErr.MaxAllowed,
			),
			Code: trading.CodeDeviationExceeded,
			Details: map[string]any{
				"deviation":  fmt.Sprintf("%.2f", devErr.Deviation),
				"maxAllowed": devErr.MaxAllowed,
			},
		})
		return
	}

	if errors.Is(err, market.ErrNotFound) {
		writeErrorBody(w, http.StatusNotFound, errorBody{
			Message: "Stock not found",
			Code:    trading.CodeNotFound,
		})
		return
	}

	if errors.Is(err, vendorapi.ErrUnavailable) {
		writeErrorBody(w, http.StatusServiceUnavailable, errorBody{
			Message: "Stock vendor service is temporarily unavailable. Please try again later.",
			Code:    vendorapi.CodeUnavailable,
		})
		return
	}

	var apiErr *vendorapi.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeErrorBody(w, status, errorBody{
			Message: "Stock vendor rejected the request",
			Code:    apiErr.Code,
		})
		return
	}

	writeErrorBody(w, http.StatusInternalServerError, errorBody{
		Message: "Internal server error",
		Code:    trading.CodeInternal,
	})
}
