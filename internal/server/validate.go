package server

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message/mail"
)

// ErrValidation is matched by every FieldError
var ErrValidation = errors.New("validation failed")

const (
	maxNameLength    = 200
	maxEmailLength   = 320
	maxFieldLength   = 200
	maxMessageLength = 10000
)

// FieldError describes a missing or malformed submission field
type FieldError struct {
	Field  string
	Reason string // "required", "too_long" or "invalid"
}

func (e *FieldError) Error() string {
	return "validation failed: " + e.Field + " " + strings.ReplaceAll(e.Reason, "_", " ")
}

// Unwrap lets errors.Is(err, ErrValidation) match
func (e *FieldError) Unwrap() error { return ErrValidation }

// Code is the machine-readable form used in JSON responses, e.g. name_required
func (e *FieldError) Code() string {
	return e.Field + "_" + e.Reason
}

// required checks that a trimmed field is present and within limit
func required(field, value string, limit int) error {
	if value == "" {
		return &FieldError{Field: field, Reason: "required"}
	}
	return optional(field, value, limit)
}

func optional(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return &FieldError{Field: field, Reason: "too_long"}
	}
	return nil
}

// validEmail loosely checks that s is a single bare address with a dotted domain
func validEmail(s string) error {
	if err := required("email", s, maxEmailLength); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@")+1:], ".") {
		return &FieldError{Field: "email", Reason: "invalid"}
	}
	return nil
}

// firstError returns the first non-nil error
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
