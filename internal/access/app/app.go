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

	"github.com/aussiebroadwan/squadgate/internal/access/audit"
	httpapi "github.com/aussiebroadwan/squadgate/internal/access/http"
	"github.com/aussiebroadwan/squadgate/internal/access/metrics"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/internal/access/telemetry"
	"github.com/aussiebroadwan/squadgate/pkg/jwtx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

const serviceName = "squadgate"

// Application owns every long-lived dependency of the service.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager
	telemetry  *telemetry.Provider
	metrics    *metrics.Metrics
	audit      *audit.Recorder

	invitationService   *service.InvitationService
	gate                *service.Gate
	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New opens the store and wires the services. Nothing is served until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("database ready", "driver", cfg.DatabaseDriver)

	app.keyManager, err = jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:  cfg.SessionIssuer,
		NumKeys: cfg.SessionNumKeys,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize session keys: %w", err)
	}

	app.telemetry, err = telemetry.Setup(ctx, serviceName, BuildVersion, cfg.OTLPEndpoint)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.CallbackSecret == "" {
		app.logger.Warn("CALLBACK_SECRET is not set; sign-in is disabled")
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the server and blocks until it fails or a shutdown signal
// arrives.
func (app *Application) Run() error {
	if err := app.housekeepingService.Start(); err != nil {
		return fmt.Errorf("housekeeping: %w", err)
	}

	app.logger.Info("squadgate starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains HTTP, stops the scheduler, flushes traces and closes the
// store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down squadgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.telemetry.Shutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("squadgate stopped")
	return nil
}

// Handler exposes the router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initServices() {
	app.metrics = metrics.New()

	if app.cfg.AuditPersist {
		app.audit = audit.NewRecorder(app.db)
	} else {
		app.audit = audit.NewRecorder(nil)
	}

	app.invitationService = &service.InvitationService{
		Store:        app.db,
		TTL:          app.cfg.InvitationTTL,
		StoreTimeout: app.cfg.StoreTimeout,
		Audit:        app.audit,
		Metrics:      app.metrics,
	}
	app.gate = &service.Gate{
		Store:        app.db,
		Invitations:  app.invitationService,
		StoreTimeout: app.cfg.StoreTimeout,
		Audit:        app.audit,
		Metrics:      app.metrics,
	}
	app.accountService = &service.AccountService{
		Store:        app.db,
		StoreTimeout: app.cfg.StoreTimeout,
		Audit:        app.audit,
	}

	app.housekeepingService = service.NewHousekeepingService(app.db, app.logger, app.cfg.HousekeepingSchedule)
	app.housekeepingService.Audit = app.audit
	app.housekeepingService.Metrics = app.metrics
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager,
		app.cfg.SessionIssuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.InvitationService = app.invitationService
	router.Gate = app.gate
	router.AccountService = app.accountService
	router.CallbackSecret = app.cfg.CallbackSecret
	router.SessionTTL = app.cfg.SessionTTL
	router.Limits = httpapi.RateLimits{
		Strict:   app.cfg.RateLimitStrict.apply(httpapi.DefaultRateLimits.Strict),
		Moderate: app.cfg.RateLimitModerate.apply(httpapi.DefaultRateLimits.Moderate),
		Lenient:  app.cfg.RateLimitLenient.apply(httpapi.DefaultRateLimits.Lenient),
	}
	router.Metrics = app.metrics
	router.Telemetry = app.telemetry
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
