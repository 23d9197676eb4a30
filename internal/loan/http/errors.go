package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/internal/loan/store"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/loansdk"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// writeServiceError maps a service error to its envelope. validationMsg is
// the message for a *service.ValidationError; login and the loan form word
// it differently.
func writeServiceError(
	w http.ResponseWriter,
	r *http.Request,
	msgs *service.Catalog,
	validationMsg string,
	err error,
) {
	log := slogx.FromContext(r.Context())

	var verr *service.ValidationError
	var ferr *service.FileError
	var aerr *service.AuthError

	switch {
	case errors.As(err, &verr):
		log.Info("validation failed", slog.String("error", verr.Error()))
		httpx.Fail(w, httpx.CodeValidation, validationMsg, toValidationErrors(verr))

	case errors.As(err, &aerr):
		log.Info("unauthorized", slog.Any("error", err))
		httpx.Fail(w, httpx.CodeAuth, aerr.Msg, nil)

	case errors.Is(err, service.ErrUnauthorized):
		httpx.Fail(w, httpx.CodeAuth, msgs.Auth, nil)

	case errors.As(err, &ferr):
		if ferr.Reason == service.FileFailed {
			log.Error("file handling failed", slog.Any("error", err))
		} else {
			log.Info("file rejected", slog.String("reason", string(ferr.Reason)))
		}
		httpx.Fail(w, httpx.CodeFile, ferr.Msg, nil)

	case errors.Is(err, store.ErrNotFound):
		log.Warn("user from token no longer exists", slog.Any("error", err))
		httpx.Fail(w, httpx.CodeNotFound, msgs.UserNotFound, nil)

	default:
		log.Error("request failed", slog.Any("error", err))
		httpx.Fail(w, httpx.CodeServer, msgs.Server, nil)
	}
}

func toValidationErrors(verr *service.ValidationError) loansdk.ValidationErrors {
	out := loansdk.ValidationErrors{Errors: make([]loansdk.FieldError, 0, len(verr.Errors))}
	for _, fe := range verr.Errors {
		out.Errors = append(out.Errors, loansdk.FieldError{
			Field: fe.Field,
			Msg:   fe.Msg,
			Type:  fe.Kind,
		})
	}
	return out
}
