package transport

import (
	"errors"
	"net/http"
	"strconv"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// statusFor maps the service error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// requestError explains why a mutation body was rejected before reaching the
// service layer.
func requestError(err error) string {
	if fieldErrs := middleware.FormatValidationErrors(err); len(fieldErrs) > 0 {
		return middleware.SummarizeValidationErrors(fieldErrs)
	}
	return err.Error()
}

func errorText(msg string) *string {
	return &msg
}

// logFailure logs store failures at error level and client mistakes at debug.
func logFailure(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if statusFor(err) == http.StatusInternalServerError {
		logger.Error(msg, fields...)
		return
	}
	logger.Debug(msg, fields...)
}

// respondServiceError writes the JSON error envelope used by read endpoints
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.RespondWithError(w, r, statusFor(err), service.Message(err))
}

// idParam parses the {id} URL parameter, writing a 400 when it is malformed
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads page and page_size query parameters
func pagination(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, defaultPageSize

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
