package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/loanapply/pkg/cryptox"
	"github.com/aussiebroadwan/loanapply/pkg/jwtx"
)

// generatedSecretSize is the number of random bytes in a generated secret.
const generatedSecretSize = 48

// InitTokenKeys builds the HS256 signer and verifier.
//
// JWT_SECRET_KEY wins when set. Otherwise the secret is read from
// JWTSecretFile, which is created with a random secret on first start so
// tokens survive restarts.
func InitTokenKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, jwtx.Verifier, error) {
	secret := cfg.JWTSecret
	if secret != "" {
		logger.Info("using token secret from environment")
	} else {
		var err error
		secret, err = cryptox.LoadOrGenerateSecret(cfg.JWTSecretFile, generatedSecretSize)
		if err != nil {
			return nil, nil, fmt.Errorf("load token secret: %w", err)
		}
		logger.Info("token secret loaded", "path", cfg.JWTSecretFile)
	}

	if len(secret) < jwtx.MinSecretSize {
		return nil, nil, fmt.Errorf("token secret must be at least %d bytes", jwtx.MinSecretSize)
	}

	signer, err := jwtx.NewSignerHS256([]byte(secret))
	if err != nil {
		return nil, nil, fmt.Errorf("create token signer: %w", err)
	}
	verifier := jwtx.NewCommonHS256([]byte(secret), jwtx.VerifyOptions{
		Issuer: cfg.Issuer,
	})

	return signer, verifier, nil
}
