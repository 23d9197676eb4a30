package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "JWT_SECRET_KEY", "JWT_ACCESS_TOKEN_EXPIRES", "UPLOAD_FOLDER",
		"MAX_CONTENT_LENGTH", "ALLOWED_EXTENSIONS", "CORS_ORIGINS", "LOAN_LOCALE",
		"STAGED_UPLOAD_TTL", "SHUTDOWN_GRACE_PERIOD", "TRUST_PROXY_HEADERS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, "uploads/loan_docs", cfg.UploadFolder)
	require.Equal(t, int64(16*1024*1024), cfg.MaxContentLength)
	require.Equal(t, []string{"pdf", "png", "jpg", "jpeg", "doc", "docx", "xls", "xlsx"}, cfg.AllowedExtensions)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, "zh", cfg.Locale)
	require.Equal(t, 24*time.Hour, cfg.StagedUploadTTL)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Empty(t, cfg.JWTSecret)
	require.False(t, cfg.TrustProxyHeaders)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRES", "900")
	t.Setenv("STAGED_UPLOAD_TTL", "30m")
	t.Setenv("ALLOWED_EXTENSIONS", " .PDF, png ,,")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MAX_CONTENT_LENGTH", "not-a-number")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg := LoadConfig()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 30*time.Minute, cfg.StagedUploadTTL)
	require.Equal(t, []string{"pdf", "png"}, cfg.AllowedExtensions)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, int64(16*1024*1024), cfg.MaxContentLength)
	require.True(t, cfg.TrustProxyHeaders)
}

func TestInitTokenKeys(t *testing.T) {
	dir := t.TempDir()

	t.Run("short environment secret", func(t *testing.T) {
		_, _, err := InitTokenKeys(Config{JWTSecret: "too-short"}, slogx.Discard())
		require.Error(t, err)
	})

	t.Run("generated secret is reused", func(t *testing.T) {
		cfg := Config{JWTSecretFile: filepath.Join(dir, "secret"), Issuer: "loanapply"}

		signer, _, err := InitTokenKeys(cfg, slogx.Discard())
		require.NoError(t, err)
		require.NotNil(t, signer)

		first, err := os.ReadFile(cfg.JWTSecretFile)
		require.NoError(t, err)

		_, verifier, err := InitTokenKeys(cfg, slogx.Discard())
		require.NoError(t, err)
		require.NotNil(t, verifier)

		second, err := os.ReadFile(cfg.JWTSecretFile)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Issuer:               "loanapply",
		JWTSecret:            strings.Repeat("s", 32),
		AccessTokenTTL:       time.Hour,
		DatabaseFile:         filepath.Join(dir, "loan.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		UploadFolder:         "uploads/loan_docs",
		UploadRoot:           dir,
		MaxContentLength:     1 << 20,
		AllowedExtensions:    []string{"pdf"},
		ChartDataFile:        filepath.Join("..", "..", "..", "data", "chart-data.json"),
		CORSOrigins:          []string{"http://localhost:5173"},
		Locale:               "en",
		SeedUsername:         "alice",
		SeedPassword:         "Test1234",
		SeedUserType:         "ENTERPRISE",
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestNewSeedsAndServes(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"user_name":"alice","password":"Test1234"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env httpx.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Equal(t, httpx.CodeSuccess, env.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewSeedIsIdempotent(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Same database, different password: the existing user is kept.
	cfg.SeedPassword = "Other123"
	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"user_name":"alice","password":"Test1234"}`))
	rec := httptest.NewRecorder()
	second.Handler().ServeHTTP(rec, req)

	var env httpx.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Equal(t, httpx.CodeSuccess, env.Code)
}

func TestNewRejectsBadSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedUserType = "ADMIN"

	_, err := New(cfg)
	require.Error(t, err)
}
