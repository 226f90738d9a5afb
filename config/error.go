package config

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/models"
)

// Error codes used in the error envelope that do not come from the workflow
const (
	CodeAuth        = "auth_error"
	CodeRateLimited = "rate_limited"
	CodeBadRequest  = "validation_error"
	CodeServer      = "server_error"
)

// WriteError writes the JSON error envelope
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(models.ErrorEnvelope{Error: models.ErrorBody{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}})
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err. The cause is logged, never returned.
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "status", httpStatusCode, "error", err)
	code := CodeBadRequest
	switch {
	case httpStatusCode == http.StatusUnauthorized:
		code = CodeAuth
	case httpStatusCode == http.StatusTooManyRequests:
		code = CodeRateLimited
	case httpStatusCode >= http.StatusInternalServerError:
		code = CodeServer
		message = "Internal server error"
	}
	WriteError(w, httpStatusCode, code, message, nil)
}
