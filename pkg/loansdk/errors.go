package loansdk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/loanapply/pkg/httpx"
)

// ErrUnexpectedStatus is returned when the transport status is not 200.
// The API reports every outcome inside the envelope, so anything else
// means a proxy or a crashed server answered.
var ErrUnexpectedStatus = errors.New("loansdk: unexpected http status")

// APIError is a non-zero envelope code.
type APIError struct {
	Code httpx.Code
	Msg  string

	// Errors is filled for validation failures
	Errors []FieldError

	// RetryAfter is filled when the rate limiter rejected the call
	RetryAfter int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("loan api %d: %s", e.Code, e.Msg)
	}
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fmt.Sprintf("loan api %d: %s [%s]", e.Code, e.Msg, strings.Join(fields, ", "))
}

// Field returns the first error reported for field, if any.
func (e *APIError) Field(field string) (FieldError, bool) {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe, true
		}
	}
	return FieldError{}, false
}

// CodeOf returns the envelope code carried by err, or -1.
func CodeOf(err error) httpx.Code {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return -1
}

func IsAuth(err error) bool       { return CodeOf(err) == httpx.CodeAuth }
func IsValidation(err error) bool { return CodeOf(err) == httpx.CodeValidation }
func IsFile(err error) bool       { return CodeOf(err) == httpx.CodeFile }
func IsNotFound(err error) bool   { return CodeOf(err) == httpx.CodeNotFound }
