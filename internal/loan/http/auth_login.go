package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/loansdk"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// maxLoginBody bounds the JSON login body.
const maxLoginBody = 64 << 10

type LoginHandler struct {
	AuthService *service.AuthService
	Messages    *service.Catalog
}

// loginBody accepts "username" as an alias of "user_name".
type loginBody struct {
	UserName string `json:"user_name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ServeHTTP handles password login.
//
//	@Summary		Log in
//	@Description	Checks a username and password and issues an HS256 access token valid for one hour.
//	@Description	The password must be exactly 8 characters.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loansdk.LoginRequest									true	"Credentials"
//	@Success		200		{object}	loansdk.Envelope[loansdk.LoginResponse]				"code 0"
//	@Failure		200		{object}	loansdk.Envelope[loansdk.ValidationErrors]			"code 10002 (bad input) or 10003 (bad credentials)"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	// A missing or unreadable body is validated as empty credentials.
	var body loginBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		log.Info("login body not decodable", "err", err)
		body = loginBody{}
	}

	username := body.UserName
	if username == "" {
		username = body.Username
	}

	res, err := h.AuthService.Login(r.Context(), username, body.Password)
	if err != nil {
		writeServiceError(w, r, h.Messages, h.Messages.Validation, err)
		return
	}

	httpx.OK(w, h.Messages.LoginOK, loansdk.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   int(res.ExpiresIn.Seconds()),
		User:        toUser(res.User),
	})
}
