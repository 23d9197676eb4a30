package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/loanapply/pkg/jwtx"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// AuthnMessages are the envelope messages written on rejection.
type AuthnMessages struct {
	Missing   string
	Malformed string
	Invalid   string
	Expired   string
}

// DefaultAuthnMessages are used for any empty field of AuthnMessages.
var DefaultAuthnMessages = AuthnMessages{
	Missing:   "missing token",
	Malformed: "malformed token header",
	Invalid:   "invalid token",
	Expired:   "token expired",
}

// AuthnOptions tune AuthnMiddleware.
type AuthnOptions struct {
	Messages AuthnMessages

	// OnReject is called with a short reason for every rejected request.
	OnReject func(r *http.Request, reason string)
}

// AuthnMiddleware requires "Authorization: Bearer <token>" and injects the
// verified claims into the request context. Rejections are written as auth
// envelopes.
func AuthnMiddleware(v jwtx.Verifier, opts AuthnOptions) Middleware {
	msgs := opts.Messages.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			reject := func(reason, msg string) {
				if opts.OnReject != nil {
					opts.OnReject(r, reason)
				}
				Fail(w, CodeAuth, msg, nil)
			}

			authz := r.Header.Get("Authorization")
			if authz == "" {
				reject("missing", msgs.Missing)
				return
			}

			raw, ok := bearerToken(authz)
			if !ok {
				reject("malformed", msgs.Malformed)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					reject("expired", msgs.Expired)
					return
				}
				log.Warn("jwt verify failed", "err", err)
				reject("invalid", msgs.Invalid)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

// bearerToken splits "<scheme> <token>" and accepts only the Bearer scheme.
func bearerToken(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	return raw, true
}

func (m AuthnMessages) withDefaults() AuthnMessages {
	if m.Missing == "" {
		m.Missing = DefaultAuthnMessages.Missing
	}
	if m.Malformed == "" {
		m.Malformed = DefaultAuthnMessages.Malformed
	}
	if m.Invalid == "" {
		m.Invalid = DefaultAuthnMessages.Invalid
	}
	if m.Expired == "" {
		m.Expired = DefaultAuthnMessages.Expired
	}
	return m
}

// MustClaims fetches claims set by AuthnMiddleware. Handlers mounted behind
// the middleware can rely on them being present.
func MustClaims(ctx context.Context) jwtx.Claims {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		panic("httpx: handler mounted without AuthnMiddleware")
	}
	return c
}
