package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/security"
)

func init() {
	// Money is rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Code: "validation_failed", Fields: fields})
}

// writeServiceError maps domain and service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidInterval *domain.InvalidIntervalError
		missingRate     *domain.MissingRateError
		illegal         *domain.IllegalTransitionError
		negative        *domain.NegativeAmountError
	)

	switch {
	case errors.As(err, &invalidInterval):
		writeError(w, http.StatusBadRequest, "invalid_interval", err.Error())
	case errors.As(err, &negative):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "negative_amount", Fields: map[string]string{negative.Field: "Must not be negative"}})
	case errors.Is(err, domain.ErrInvalidPaymentMethod), errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.As(err, &missingRate):
		writeError(w, http.StatusUnprocessableEntity, "missing_rate", err.Error())
	case errors.As(err, &illegal):
		writeError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "the resource was modified concurrently, retry the request")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, security.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, security.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
