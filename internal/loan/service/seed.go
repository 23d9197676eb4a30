package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/internal/loan/store"
	"github.com/aussiebroadwan/loanapply/pkg/cryptox"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

var (
	ErrSeedInvalidUserType = errors.New("seed user type must be INDIVIDUAL or ENTERPRISE")
	ErrSeedInvalidPassword = errors.New("seed password must be exactly 8 characters")
)

// SeedUser describes the account created on an empty database.
type SeedUser struct {
	Username string
	Password string // generated when empty
	UserType string // INDIVIDUAL when empty
}

// SeedService provisions the first account. There is no registration
// endpoint, so without it a fresh database has nobody who can log in.
type SeedService struct {
	Store store.Store
	Now   func() time.Time
}

// Seed creates the user when the users table is empty. It returns the
// password that was set, which is freshly generated when none was given,
// and false when the database already had users.
func (s *SeedService) Seed(ctx context.Context, seed SeedUser) (string, bool, error) {
	l := slogx.FromContext(ctx)

	username := strings.TrimSpace(seed.Username)
	if username == "" {
		return "", false, nil
	}
	userType := seed.UserType
	if userType == "" {
		userType = domain.UserTypeIndividual
	}
	if !domain.ValidUserType(userType) {
		return "", false, ErrSeedInvalidUserType
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return "", false, fmt.Errorf("check users: %w", err)
	}
	if !empty {
		l.Debug("users present, skipping seed")
		return "", false, nil
	}

	password := seed.Password
	if password == "" {
		password, err = cryptox.GeneratePassword(cryptox.PasswordLength)
		if err != nil {
			return "", false, err
		}
	}
	if utf8.RuneCountInString(password) != cryptox.PasswordLength {
		return "", false, ErrSeedInvalidPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", false, fmt.Errorf("hash seed password: %w", err)
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	u, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		UserType:     userType,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", false, fmt.Errorf("create seed user: %w", err)
	}

	l.Info("seeded initial user",
		slog.Int64("user_id", u.ID),
		slog.String("username", u.Username),
		slog.String("user_type", u.UserType),
	)
	return password, true, nil
}
