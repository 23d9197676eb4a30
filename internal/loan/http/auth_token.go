package http

import (
	"net/http"

	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/loansdk"
)

type TokenTestHandler struct {
	Messages *service.Catalog
}

// ServeHTTP echoes the identity claims of a valid token.
//
//	@Summary		Test a token
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	loansdk.Envelope[loansdk.TokenInfoResponse]	"code 0"
//	@Failure		200	{object}	loansdk.Envelope[any]						"code 10003"
//	@Router			/api/auth/test [get].
func (h *TokenTestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := httpx.MustClaims(r.Context())

	httpx.OK(w, h.Messages.TokenOK, loansdk.TokenInfoResponse{
		UserID:   claims.UserID,
		Username: claims.Username,
		UserType: claims.UserType,
	})
}
