package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fstr-project/pereval-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var testValidate = validator.New()

type testPayload struct {
	Email string `json:"email" validate:"required,email"`
	Count int    `json:"count" validate:"min=2"`
}

func (p *testPayload) Validate() error {
	return testValidate.Struct(p)
}

func newContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBindAndValidateAcceptsValidPayload(t *testing.T) {
	c, _ := newContext(`{"email": "climber@example.com", "count": 3}`)

	payload := &testPayload{}
	if err := BindAndValidate(c, payload); err != nil {
		t.Fatalf("BindAndValidate: %v", err)
	}
	if payload.Email != "climber@example.com" || payload.Count != 3 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	c, _ := newContext(`{"email": `)

	err := BindAndValidate(c, &testPayload{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %T, want *errs.HTTPError", err)
	}
	if httpErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", httpErr.Status)
	}
}

func TestBindAndValidateReportsFieldErrors(t *testing.T) {
	c, _ := newContext(`{"email": "not-an-email", "count": 1}`)

	err := BindAndValidate(c, &testPayload{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %T, want *errs.HTTPError", err)
	}
	if len(httpErr.Errors) != 2 {
		t.Fatalf("field errors = %+v, want 2", httpErr.Errors)
	}

	byField := map[string]string{}
	for _, fe := range httpErr.Errors {
		byField[fe.Field] = fe.Error
	}
	if byField["email"] != "must be a valid email address" {
		t.Errorf("email error = %q", byField["email"])
	}
	if byField["count"] != "must be at least 2" {
		t.Errorf("count error = %q", byField["count"])
	}
}

func TestExtractValidationErrorCustomErrors(t *testing.T) {
	err := CustomValidationErrors{
		{Field: "coords", Message: "latitude and longitude must be supplied together"},
	}

	msg, fieldErrors := extractValidationError(err)
	if msg != "Validation failed" {
		t.Errorf("msg = %q", msg)
	}
	if len(fieldErrors) != 1 || fieldErrors[0].Field != "coords" {
		t.Errorf("field errors = %+v", fieldErrors)
	}
}
