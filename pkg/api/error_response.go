package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adfharrison1/go-odm/pkg/odm"
	"github.com/adfharrison1/go-odm/pkg/storage"
)

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(response)
}

// statusFor maps lookup failures to 404 and everything else to 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrCollectionNotFound),
		errors.Is(err, storage.ErrDocumentNotFound),
		errors.Is(err, odm.ErrUnknownClass):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
