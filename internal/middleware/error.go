package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON envelope for failed read requests
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	RespondWithErrorDetails(w, r, statusCode, message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details.
// r may be nil when no request is at hand.
func RespondWithErrorDetails(w http.ResponseWriter, r *http.Request, statusCode int, message string, details map[string]interface{}) {
	detail := ErrorDetail{
		Code:      http.StatusText(statusCode),
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if r != nil {
		detail.RequestID = middleware.GetReqID(r.Context())
	}

	RespondWithJSON(w, statusCode, ErrorResponse{Error: detail})
}

// RespondWithValidationErrors sends a 400 listing every failed field
func RespondWithValidationErrors(w http.ResponseWriter, r *http.Request, errors []ValidationError) {
	RespondWithErrorDetails(w, r, http.StatusBadRequest, "validation failed", map[string]interface{}{
		"validation_errors": errors,
	})
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorHandlingMiddleware turns handler panics into logged 500 responses
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.Error("Panic recovered",
						zap.Any("error", rec),
						zap.String("request_id", middleware.GetReqID(r.Context())),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Stack("stack"),
					)

					RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
