package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/internal/loan/metrics"
	"github.com/aussiebroadwan/loanapply/internal/loan/store"
	"github.com/aussiebroadwan/loanapply/pkg/cryptox"
	"github.com/aussiebroadwan/loanapply/pkg/jwtx"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// TokenTypeBearer is the token_type returned on login.
const TokenTypeBearer = "Bearer"

// Login outcome label values.
const (
	loginOutcomeInvalidInput = "invalid_input"
	loginOutcomeRejected     = "rejected"
)

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	User        domain.User
}

type AuthService struct {
	Store     store.Store
	Signer    jwtx.Signer
	Verifier  jwtx.Verifier
	Issuer    string
	AccessTTL time.Duration
	Messages  *Catalog
	Metrics   *metrics.Metrics

	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Login checks a username and password and issues an access token.
//
// Unknown users and wrong passwords fail with the same *AuthError. A hash
// is verified on both paths so response time does not reveal which.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := slogx.FromContext(ctx)
	msgs := s.messages()

	username = strings.TrimSpace(username)
	if verr := validateLogin(msgs, username, password); verr != nil {
		s.Metrics.IncLogin(loginOutcomeInvalidInput)
		return nil, verr
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		_ = cryptox.VerifyPassword(password, s.dummy())
		l.Info("login for unknown user", slog.String("username", username))
		s.Metrics.IncLogin(loginOutcomeRejected)
		return nil, unauthorized(msgs.InvalidCredentials, nil)
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			l.Error("stored password hash unusable", slog.Int64("user_id", u.ID), slog.Any("error", err))
		} else {
			l.Info("login password mismatch", slog.Int64("user_id", u.ID))
		}
		s.Metrics.IncLogin(loginOutcomeRejected)
		return nil, unauthorized(msgs.InvalidCredentials, nil)
	}

	now := s.now()
	if cryptox.IsLegacyHash(u.PasswordHash) {
		s.upgradeHash(ctx, u, password, now)
	}

	claims := jwtx.NewAccessClaims(u.ID, u.Username, u.UserType, s.ttl(), s.Issuer, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	l.Info("user logged in", slog.Int64("user_id", u.ID))
	s.Metrics.IncLogin(metrics.OutcomeOK)
	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   s.ttl(),
		User:        u,
	}, nil
}

// Verify checks a bearer token and returns its claims.
func (s *AuthService) Verify(token string) (jwtx.Claims, error) {
	msgs := s.messages()
	if strings.TrimSpace(token) == "" {
		return jwtx.Claims{}, unauthorized(msgs.TokenMissing, nil)
	}
	c, err := s.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, unauthorized(msgs.TokenExpired, err)
		}
		return jwtx.Claims{}, unauthorized(msgs.TokenInvalid, err)
	}
	return c, nil
}

// CurrentUser loads the user a token was issued to. A user deleted after
// the token was issued yields store.ErrNotFound rather than ErrUnauthorized:
// the token itself verified, so the handlers answer with the not-found
// envelope (code 10004) instead of an authentication failure.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// upgradeHash replaces an imported bcrypt hash with argon2id. Failure is
// logged only; the login has already succeeded.
func (s *AuthService) upgradeHash(ctx context.Context, u domain.User, password string, now time.Time) {
	l := slogx.FromContext(ctx)
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Warn("failed to rehash legacy password", slog.Int64("user_id", u.ID), slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash, now); err != nil {
		l.Warn("failed to store upgraded password hash", slog.Int64("user_id", u.ID), slog.Any("error", err))
		return
	}
	l.Info("upgraded legacy password hash", slog.Int64("user_id", u.ID))
}

func validateLogin(msgs *Catalog, username, password string) error {
	var errs []FieldError
	if username == "" {
		errs = append(errs, FieldError{Field: "user_name", Msg: msgs.UsernameRequired, Kind: KindMissing})
	}
	switch {
	case password == "":
		errs = append(errs, FieldError{Field: "password", Msg: msgs.PasswordRequired, Kind: KindMissing})
	case utf8.RuneCountInString(password) != cryptox.PasswordLength:
		errs = append(errs, FieldError{Field: "password", Msg: msgs.PasswordLength, Kind: KindLength})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword("not-a-real-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *AuthService) ttl() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

func (s *AuthService) messages() *Catalog {
	if s.Messages == nil {
		return Messages("")
	}
	return s.Messages
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
