package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpapi "github.com/aussiebroadwan/loanapply/internal/loan/http"
	"github.com/aussiebroadwan/loanapply/internal/loan/metrics"
	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/internal/loan/store"
	"github.com/aussiebroadwan/loanapply/internal/loan/store/drivers/sqlite"
	"github.com/aussiebroadwan/loanapply/pkg/cryptox"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/jwtx"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application encapsulates the loan service and all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	signer   jwtx.Signer
	verifier jwtx.Verifier
	messages *service.Catalog
	metrics  *metrics.Metrics

	// Services
	authService         *service.AuthService
	loanService         *service.LoanService
	stager              *service.FileStager
	seedService         *service.SeedService
	housekeepingService *service.HousekeepingService
	housekeepingRunning bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "loan-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		messages: service.Messages(cfg.Locale),
		metrics:  metrics.New(),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, verifier, err := InitTokenKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token keys: %w", err)
	}
	app.signer = signer
	app.verifier = verifier

	app.initServices()

	if err := app.seed(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until ctx is cancelled, a shutdown
// signal arrives or the server fails.
func (app *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.housekeepingService.Start()
	app.housekeepingRunning = true

	app.logger.Info("loan service starting", "port", app.cfg.Port, "version", BuildVersion)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutdown requested", "cause", context.Cause(gctx))
		return app.shutdownServer()
	})

	err := g.Wait()
	if cerr := app.Close(); err == nil {
		err = cerr
	}
	return err
}

// shutdownServer gives outstanding requests the grace period to finish.
func (app *Application) shutdownServer() error {
	app.logger.Info("shutting down loan service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Close stops background work and releases the database. Run calls it on
// the way out; call it directly only when Run was never started.
func (app *Application) Close() error {
	if app.housekeepingRunning {
		app.housekeepingService.Stop()
		app.housekeepingRunning = false
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("loan service stopped")
	return nil
}

// Handler exposes the routed handler, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:     app.db,
		Signer:    app.signer,
		Verifier:  app.verifier,
		Issuer:    app.cfg.Issuer,
		AccessTTL: app.cfg.AccessTokenTTL,
		Messages:  app.messages,
		Metrics:   app.metrics,
	}

	app.stager = &service.FileStager{
		Dir:        app.cfg.UploadFolder,
		Root:       app.cfg.UploadRoot,
		AllowedExt: app.cfg.AllowedExtensions,
	}

	app.loanService = &service.LoanService{
		Store:     app.db,
		Validator: &service.Validator{Messages: app.messages},
		Stager:    app.stager,
		Charts:    &service.ChartSource{Path: app.cfg.ChartDataFile},
		Messages:  app.messages,
		Metrics:   app.metrics,
	}

	app.seedService = &service.SeedService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.stager,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.StagedUploadTTL,
	)
	app.housekeepingService.Metrics = app.metrics
}

// seed creates the configured user on first start.
func (app *Application) seed(ctx context.Context) error {
	if app.cfg.SeedUsername == "" {
		return nil
	}

	password, created, err := app.seedService.Seed(ctx, service.SeedUser{
		Username: app.cfg.SeedUsername,
		Password: app.cfg.SeedPassword,
		UserType: app.cfg.SeedUserType,
	})
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}
	if !created {
		app.logger.Info("seed user already present", "username", app.cfg.SeedUsername)
		return nil
	}

	if app.cfg.SeedPassword == "" {
		// Shown once; it is not recoverable afterwards.
		app.logger.Warn("seed user created with generated password",
			"username", app.cfg.SeedUsername,
			"password", password,
		)
	} else {
		app.logger.Info("seed user created", "username", app.cfg.SeedUsername)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(httpapi.RouterConfig{
		BuildVersion: BuildVersion,
		Messages:     app.messages,
		CORS: httpx.CORSConfig{
			AllowedOrigins:   app.cfg.CORSOrigins,
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		},
		MaxBodyBytes:      app.cfg.MaxContentLength,
		TrustProxyHeaders: app.cfg.TrustProxyHeaders,
	}, app.db, app.logger)

	// Wire services to router
	router.AuthService = app.authService
	router.LoanService = app.loanService
	router.Stager = app.stager
	router.Metrics = app.metrics
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
