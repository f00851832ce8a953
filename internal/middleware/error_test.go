package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var standardCodes = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusServiceUnavailable,
}

// Feature: crm-backend, Property 7: Errors have consistent structure
func TestProperty_ErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all error responses have consistent structure", prop.ForAll(
		func(message string, codeIndex int) bool {
			statusCode := standardCodes[codeIndex]

			w := httptest.NewRecorder()
			RespondWithError(w, nil, statusCode, message)

			if w.Code != statusCode || w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if response.Error.Code != http.StatusText(statusCode) || response.Error.Message != message {
				return false
			}
			_, err := time.Parse(time.RFC3339, response.Error.Timestamp)
			return err == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.IntRange(0, len(standardCodes)-1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithErrorIncludesRequestID(t *testing.T) {
	var body ErrorResponse
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, r, http.StatusNotFound, "customer not found")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/x", nil))

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error.RequestID == "" {
		t.Error("Expected request_id in the error envelope")
	}
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, nil, []ValidationError{{Field: "email", Message: "Invalid email format"}})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var response ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if _, ok := response.Error.Details["validation_errors"]; !ok {
		t.Error("Expected validation_errors in details")
	}
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := ErrorHandlingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if logs.FilterMessage("Panic recovered").Len() != 1 {
		t.Error("Expected the panic to be logged once")
	}
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusCreated, map[string]string{"status": "ok"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", w.Code)
	}

	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got["status"] != "ok" {
		t.Errorf("Unexpected body %q (%v)", w.Body.String(), err)
	}
}
