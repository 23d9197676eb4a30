package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/service"
)

type Config struct {
	Issuer string // Optional: issuer claim for tokens (default: loanapply)

	JWTSecret      string        // Optional: HS256 secret; when empty it is loaded or generated at JWTSecretFile
	JWTSecretFile  string        // Optional: path of the generated secret (default: ./jwt_secret)
	AccessTokenTTL time.Duration // Optional: access token lifetime (default: 1h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./loan.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	UploadFolder      string        // Optional: staging folder, absolute or relative to UploadRoot (default: uploads/loan_docs)
	UploadRoot        string        // Optional: base of a relative UploadFolder (default: working directory)
	MaxContentLength  int64         // Optional: request body cap in bytes (default: 16 MiB)
	AllowedExtensions []string      // Optional: accepted upload extensions (default: pdf png jpg jpeg doc docx xls xlsx)
	StagedUploadTTL   time.Duration // Optional: age after which unconfirmed uploads are removed, 0 keeps them (default: 24h)
	ChartDataFile     string        // Optional: JSON file with the chart series (default: data/chart-data.json)

	CORSOrigins []string // Optional: browser origins allowed to call the API (default: http://localhost:5173)
	Locale      string   // Optional: message language, zh or en (default: zh)

	TrustProxyHeaders bool // Optional: rate limit by X-Forwarded-For, only behind a rewriting proxy (default: false)

	SeedUsername string // Optional: user created on an empty database
	SeedPassword string // Optional: its password, generated when empty
	SeedUserType string // Optional: INDIVIDUAL or ENTERPRISE (default: INDIVIDUAL)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 5000)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         getEnvOrDefault("LOAN_ISSUER", "loanapply"),
		JWTSecret:      os.Getenv("JWT_SECRET_KEY"),
		JWTSecretFile:  getEnvOrDefault("LOAN_JWT_SECRET_FILE", "jwt_secret"),
		AccessTokenTTL: getEnvDurationOrDefault("JWT_ACCESS_TOKEN_EXPIRES", time.Hour),
		DatabaseFile:   getEnvOrDefault("LOAN_DATABASE_FILE", "loan.db"),
		PepperFile:     getEnvOrDefault("LOAN_PEPPER_FILE", "pepper"),

		UploadFolder:      getEnvOrDefault("UPLOAD_FOLDER", "uploads/loan_docs"),
		UploadRoot:        os.Getenv("UPLOAD_ROOT"),
		MaxContentLength:  int64(getEnvIntOrDefault("MAX_CONTENT_LENGTH", 16*1024*1024)),
		AllowedExtensions: getEnvListOrDefault("ALLOWED_EXTENSIONS", service.DefaultAllowedExtensions),
		StagedUploadTTL:   getEnvDurationOrDefault("STAGED_UPLOAD_TTL", 24*time.Hour),
		ChartDataFile:     getEnvOrDefault("CHART_DATA_FILE", "data/chart-data.json"),

		CORSOrigins: getEnvListOrDefault("CORS_ORIGINS", []string{"http://localhost:5173"}),
		Locale:      getEnvOrDefault("LOAN_LOCALE", "zh"),

		TrustProxyHeaders: getEnvBoolOrDefault("TRUST_PROXY_HEADERS", false),

		SeedUsername: os.Getenv("SEED_USERNAME"),
		SeedPassword: os.Getenv("SEED_PASSWORD"),
		SeedUserType: os.Getenv("SEED_USER_TYPE"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 5000),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	// Extensions are matched lowercase and without the dot
	for i, ext := range cfg.AllowedExtensions {
		cfg.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds, as JWT_ACCESS_TOKEN_EXPIRES has always been
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
