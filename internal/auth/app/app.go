package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/dexxter/dexxter/internal/auth/http"
	"github.com/dexxter/dexxter/internal/auth/notify"
	"github.com/dexxter/dexxter/internal/auth/service"
	"github.com/dexxter/dexxter/internal/auth/store"
	"github.com/dexxter/dexxter/internal/auth/store/drivers/sqlite"
	"github.com/dexxter/dexxter/pkg/cryptox"
	"github.com/dexxter/dexxter/pkg/jwtx"
	"github.com/dexxter/dexxter/pkg/mailx"
	"github.com/dexxter/dexxter/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	signer jwtx.Signer
	mail   mailx.Mail

	// Services
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "dexxter-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigner(); err != nil {
		return nil, err
	}

	if err := app.initMail(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seed(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to seed principals: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.mail != nil {
		if err := app.mail.Close(); err != nil {
			app.logger.Error("error closing mail transport", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initSigner generates the session signing key. Keys are ephemeral: sessions
// do not survive a restart, which is acceptable for this service.
func (app *Application) initSigner() error {
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA("dexxter-"+BuildVersion, pemKey)
	if err != nil {
		return fmt.Errorf("failed to initialize signer: %w", err)
	}

	app.signer = signer
	return nil
}

// initMail sets up the SMTP transport for verification emails. Without an
// SMTP host codes are only logged, which is unusable outside local dev.
func (app *Application) initMail() error {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("SMTP_HOST not set, verification codes will be logged instead of emailed")
		return nil
	}

	mail, err := mailx.NewSMTP(mailx.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize mail transport: %w", err)
	}

	app.mail = mail
	return nil
}

// initServices initializes the business logic services.
func (app *Application) initServices() {
	var sender notify.CodeSender
	if app.mail != nil {
		sender = notify.NewEmailSender(app.mail, app.cfg.SMTPFrom)
	} else {
		sender = notify.NewLogSender(app.logger)
	}

	app.authService = &service.AuthService{
		Store: app.db,
		Sessions: &service.SessionService{
			Signer: app.signer,
			Issuer: app.cfg.Issuer,
			TTL:    app.cfg.SessionTTL,
		},
		Sender:       sender,
		CodeTTL:      app.cfg.CodeTTL,
		ChallengeTTL: app.cfg.ChallengeTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
