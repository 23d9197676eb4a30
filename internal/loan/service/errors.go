package service

import (
	"errors"
	"strings"
)

// ErrUnauthorized is the kind shared by every credential and token failure.
// Match it with errors.Is; the user-facing text lives on *AuthError.
var ErrUnauthorized = errors.New("unauthorized")

// AuthError carries the message shown to the caller for an auth failure.
type AuthError struct {
	Msg string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

func unauthorized(msg string, cause error) error {
	return &AuthError{Msg: msg, Err: cause}
}

// Field error kinds.
const (
	KindMissing      = "missing"
	KindInvalidType  = "invalid_type"
	KindNotPositive  = "not_positive"
	KindLength       = "length"
	KindPattern      = "pattern"
	KindBusinessRule = "business_rule"
	KindInvalid      = "invalid"
)

// FieldError is one rejected form field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
	Kind  string `json:"type"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" ("+fe.Kind+")")
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Has reports whether field failed with the given kind.
func (e *ValidationError) Has(field, kind string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field && fe.Kind == kind {
			return true
		}
	}
	return false
}

// FileErrorReason tells a missing upload apart from a rejected or failed one.
type FileErrorReason string

const (
	FileMissing  FileErrorReason = "missing"
	FileRejected FileErrorReason = "rejected"
	FileFailed   FileErrorReason = "failed"
)

// FileError is returned when the property proof upload is absent or could
// not be staged.
type FileError struct {
	Reason FileErrorReason
	Msg    string
	Err    error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return "file " + string(e.Reason) + ": " + e.Err.Error()
	}
	return "file " + string(e.Reason)
}

func (e *FileError) Unwrap() error { return e.Err }
