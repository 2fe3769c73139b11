// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database driver and converts
// them into user-friendly messages (e.g., converting a "foreign key
// violation" into a "Bad Request" error).
package sqlerr

import (
	"strings"
)

// Code categorizes Postgres SQLSTATE classes this application cares
// about. Anything unmapped is Other.
type Code int

const (
	Other Code = iota
	UniqueViolation
	ForeignKeyViolation
	NotNullViolation
	CheckViolation
	ConnectionFailure
)

// Severity mirrors the severity field of a Postgres error.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityError
	SeverityFatal
	SeverityPanic
)

// MapCode maps a SQLSTATE code onto a Code.
//
// Class 23 covers integrity constraint violations; class 08 covers
// connection exceptions.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	}
	if strings.HasPrefix(sqlstate, "08") {
		return ConnectionFailure
	}
	return Other
}

// MapSeverity maps the Postgres severity string onto a Severity.
func MapSeverity(severity string) Severity {
	switch strings.ToUpper(severity) {
	case "ERROR":
		return SeverityError
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	}
	return SeverityUnknown
}

// Error is the normalized form of a Postgres server error. It keeps
// the original driver error for unwrapping.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the original driver error to errors.As/Is.
func (e *Error) Unwrap() error {
	return e.driverErr
}
