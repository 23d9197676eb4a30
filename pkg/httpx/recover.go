package httpx

import (
	"net/http"
	"runtime/debug"

	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// Recover turns a panic into a server-error envelope. The panic value and
// stack only go to the log.
func Recover(msg string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slogx.FromContext(r.Context()).Error("panic serving request",
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				Fail(w, CodeServer, msg, nil)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
