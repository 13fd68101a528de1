package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/onboarding/internal/adapter/driven/callback"
	"github.com/ericfisherdev/onboarding/internal/adapter/driven/events"
	sqliteadapter "github.com/ericfisherdev/onboarding/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/onboarding/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/onboarding/internal/adapter/driving/web"
	"github.com/ericfisherdev/onboarding/internal/application"
	"github.com/ericfisherdev/onboarding/internal/config"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"callback_timeout", cfg.CallbackTimeout,
		"id_policy", cfg.IDPolicy.String(),
		"secret_key_set", cfg.HasSecretKey(),
		"admin_token_set", cfg.AdminToken != "",
		"nats", cfg.NATSURL != "",
	)
	if !cfg.HasSecretKey() {
		slog.Warn("ONBOARDING_SECRET_KEY not set, passwords and credentials cannot be stored")
	}
	if cfg.AdminToken == "" {
		slog.Warn("ONBOARDING_ADMIN_TOKEN not set, mutating API routes are unauthenticated")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	configStore := sqliteadapter.NewConfigRepo(db, cfg.SecretKey)
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	callbackClient := callback.NewClient(cfg.CallbackTimeout, slog.Default())

	var publisher driven.EventPublisher = &events.NoopPublisher{}
	if cfg.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		publisher = natsPub
		slog.Info("publishing events to nats", "url", cfg.NATSURL)
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			slog.Error("error closing event publisher", "error", closeErr)
		}
	}()

	// 6. Create application services and load the stored configuration.
	configSvc := application.NewConfigurationService(
		configStore,
		application.NewRegistry(cfg.IDPolicy),
		publisher,
		slog.Default(),
	)
	if err := configSvc.Init(ctx); err != nil {
		return err
	}
	dispatcher := application.NewDispatcher(callbackClient, credentialStore, configSvc, publisher, slog.Default())

	// 7. Register API and GUI routes on one mux.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(configSvc, dispatcher, credentialStore, cfg.AdminToken, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)
	webHandler := webhandler.NewHandler(configSvc, dispatcher, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	// WriteTimeout leaves room for one callback attempt inside a request.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.CallbackTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	slog.Info("onboarding started",
		"listen_addr", cfg.ListenAddr,
		"entries", len(configSvc.Entries()),
	)

	// 8. Wait for shutdown signal or server failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			slog.Error("http server error", "error", err)
		}
	}

	// 9. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 10. Persist the in-memory configuration one last time.
	if err := configSvc.Flush(shutdownCtx); err != nil {
		slog.Error("failed to flush configuration", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
