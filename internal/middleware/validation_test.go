package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type testRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Quantity int      `json:"quantity" validate:"gte=0,lte=150"`
	Items    []string `json:"items" validate:"min=1"`
}

func decode(t *testing.T, body string) (testRequest, error) {
	t.Helper()
	var out testRequest
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))
	err := DecodeAndValidate(httptest.NewRecorder(), req, &out)
	return out, err
}

// Feature: crm-backend, Property 8: Required field validation works
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeEmail bool) bool {
			reqMap := map[string]interface{}{"items": []string{"a"}}
			if includeName {
				reqMap["name"] = "John Doe"
			}
			if includeEmail {
				reqMap["email"] = "john@example.com"
			}

			body, _ := json.Marshal(reqMap)
			_, err := decode(t, string(body))

			if includeName && includeEmail {
				return err == nil
			}
			return err != nil && len(FormatValidationErrors(err)) > 0
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: crm-backend, Property 9: Range validation uses inclusive bounds
func TestProperty_RangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantity outside [0,150] is rejected", prop.ForAll(
		func(quantity int) bool {
			body, _ := json.Marshal(map[string]interface{}{
				"name":     "John Doe",
				"email":    "john@example.com",
				"quantity": quantity,
				"items":    []string{"a"},
			})
			_, err := decode(t, string(body))

			if quantity >= 0 && quantity <= 150 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-100, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	_, err := decode(t, `{"name":"John","email":"nope","items":[]}`)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	byField := map[string]string{}
	for _, ve := range FormatValidationErrors(err) {
		byField[ve.Field] = ve.Message
	}

	if byField["email"] != "Invalid email format" {
		t.Errorf("Unexpected email message %q", byField["email"])
	}
	if byField["items"] != "Must contain at least 1 item(s)" {
		t.Errorf("Unexpected items message %q", byField["items"])
	}

	summary := SummarizeValidationErrors(FormatValidationErrors(err))
	if !strings.Contains(summary, "email: Invalid email format") {
		t.Errorf("Unexpected summary %q", summary)
	}
}

func TestDecodeAndValidateRejectsMalformedBodies(t *testing.T) {
	for name, body := range map[string]string{
		"not json":      `{"name":`,
		"unknown field": `{"name":"J","email":"j@x.io","items":["a"],"extra":1}`,
		"two objects":   `{"name":"J","email":"j@x.io","items":["a"]} {}`,
	} {
		t.Run(name, func(t *testing.T) {
			var out testRequest
			req := httptest.NewRequest("POST", "/test", bytes.NewBufferString(body))
			err := DecodeAndValidate(httptest.NewRecorder(), req, &out)

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("Expected DecodeError, got %v", err)
			}
		})
	}
}
