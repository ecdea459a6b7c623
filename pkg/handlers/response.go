package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/apperrors"
)

// ApiResponse wraps data in the envelope expected by API clients.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ServiceError maps a service error to its HTTP status and writes the
// error response. Sentinel errors carry the status; everything else is a
// 500 with the wrapped message.
func ServiceError(w http.ResponseWriter, err error, errorCode string, logger *zap.Logger) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrNoInputData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	}

	if writeErr := ErrorResponse(w, status, errorCode, err.Error()); writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
