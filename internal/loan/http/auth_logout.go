package http

import (
	"net/http"

	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/loansdk"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

type LogoutHandler struct {
	AuthService *service.AuthService
	Messages    *service.Catalog
}

// ServeHTTP acknowledges a logout. Tokens are stateless, so nothing is
// revoked; the client discards its token.
//
//	@Summary		Log out
//	@Description	Returns the username of the token's user. The token itself stays valid until it expires.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	loansdk.Envelope[loansdk.LogoutResponse]	"code 0"
//	@Failure		200	{object}	loansdk.Envelope[any]						"code 10003 (bad token) or 10004 (user deleted)"
//	@Router			/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := httpx.MustClaims(ctx)

	user, err := h.AuthService.CurrentUser(ctx, claims.UserID)
	if err != nil {
		writeServiceError(w, r, h.Messages, h.Messages.Validation, err)
		return
	}

	slogx.FromContext(ctx).Info("user logged out", "user_id", user.ID)
	httpx.OK(w, h.Messages.LogoutOK, loansdk.LogoutResponse{Username: user.Username})
}
