package sqlerr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/fstr-project/pereval-api/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapCode(t *testing.T) {
	cases := []struct {
		sqlstate string
		want     Code
	}{
		{"23505", UniqueViolation},
		{"23503", ForeignKeyViolation},
		{"23502", NotNullViolation},
		{"23514", CheckViolation},
		{"08006", ConnectionFailure},
		{"42601", Other},
		{"", Other},
	}

	for _, tc := range cases {
		if got := MapCode(tc.sqlstate); got != tc.want {
			t.Errorf("MapCode(%q) = %v, want %v", tc.sqlstate, got, tc.want)
		}
	}
}

func TestConvertPgErrorKeepsDriverError(t *testing.T) {
	src := &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		Message:        "duplicate key value violates unique constraint",
		TableName:      "users",
		ConstraintName: "users_email_key",
	}

	converted := ConvertPgError(src)
	if converted.Code != UniqueViolation {
		t.Errorf("Code = %v, want UniqueViolation", converted.Code)
	}
	if converted.Severity != SeverityError {
		t.Errorf("Severity = %v, want SeverityError", converted.Severity)
	}
	if !errors.Is(converted, src) {
		t.Error("converted error does not unwrap to the driver error")
	}
}

func TestHandleErrorUniqueViolationNamesColumn(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "users",
		ConstraintName: "users_email_key",
	})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("HandleError returned %T, want *errs.HTTPError", err)
	}
	if httpErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", httpErr.Status)
	}
	if httpErr.Code != "USER_ALREADY_EXISTS" {
		t.Errorf("code = %q, want USER_ALREADY_EXISTS", httpErr.Code)
	}
	if httpErr.Message != "A User with this Email already exists" {
		t.Errorf("message = %q", httpErr.Message)
	}
}

func TestHandleErrorForeignKeyViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:      "23503",
		Severity:  "ERROR",
		TableName: "pereval_added",
		// Postgres does not fill ColumnName for FK violations, so the
		// entity falls back to the singularized table name.
	})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("HandleError returned %T, want *errs.HTTPError", err)
	}
	if httpErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", httpErr.Status)
	}
	if httpErr.Code != "PEREVAL_ADDED_NOT_FOUND" {
		t.Errorf("code = %q", httpErr.Code)
	}
}

func TestHandleErrorNotNullViolationReportsField(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:       "23502",
		Severity:   "ERROR",
		TableName:  "pereval_added",
		ColumnName: "title",
	})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("HandleError returned %T, want *errs.HTTPError", err)
	}
	if len(httpErr.Errors) != 1 || httpErr.Errors[0].Field != "title" {
		t.Errorf("field errors = %+v, want one for title", httpErr.Errors)
	}
}

func TestHandleErrorConnectionFailureIs500(t *testing.T) {
	err := HandleError(&pgconn.PgError{Code: "08006", Severity: "FATAL"})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("HandleError returned %T, want *errs.HTTPError", err)
	}
	if httpErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", httpErr.Status)
	}
}

func TestHandleErrorNoRowsIs404(t *testing.T) {
	err := HandleError(pgx.ErrNoRows)

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("HandleError returned %T, want *errs.HTTPError", err)
	}
	if httpErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", httpErr.Status)
	}
}

func TestHandleErrorPassesThroughHTTPErrors(t *testing.T) {
	original := errs.NewNotFoundError("Pereval not found", false, nil)
	if got := HandleError(original); got != original {
		t.Errorf("HandleError rewrote an existing HTTP error: %v", got)
	}
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	cases := []struct {
		constraint string
		want       string
	}{
		{"users_email_key", "email"},
		{"unique_users_email", "email"},
		{"pereval_images_pereval_id_img_ukey", "img"},
		{"pkey_only", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := extractColumnForUniqueViolation(tc.constraint); got != tc.want {
			t.Errorf("extractColumnForUniqueViolation(%q) = %q, want %q", tc.constraint, got, tc.want)
		}
	}
}
