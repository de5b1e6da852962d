// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/kwm/internal/api"
	"github.com/starford/kwm/internal/cardservice"
	"github.com/starford/kwm/internal/collection"
	"github.com/starford/kwm/internal/storage"
)

// runtime holds the components shared by every command.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	out    io.Writer
	store  *storage.FS
	db     *collection.DB
	svc    *cardservice.Service
}

func (rt *runtime) Close() error {
	return rt.db.Close()
}

// bootstrap applies opts, opens the vault and the collection and, when
// initialSync is set, imports the vault. defaultLog is used when no log
// output was configured.
func bootstrap(defaultLog io.Writer, initialSync bool, opts ...Option) (*application, *runtime, error) {
	app := &application{version: "dev", out: os.Stdout, logOut: defaultLog}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("strategy", cfg.Manager.Strategy.String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := collection.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init collection: %w", err)
	}

	if initialSync {
		if _, err := collection.Sync(db, store, logger); err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		}
	}

	svc := cardservice.NewService(db, store, cfg.Manager.Options(), logger)
	return app, &runtime{cfg: cfg, logger: logger, out: app.out, store: store, db: db, svc: svc}, nil
}

// Run starts the HTTP server, and the vault watcher and auto updates when
// enabled, until ctx is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	_, rt, err := bootstrap(os.Stdout, true, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg
	logger := rt.logger

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.db.ListDecks(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	var changes chan struct{}
	if cfg.Manager.AutoUpdate {
		changes = make(chan struct{}, 1)
		g.Go(func() error {
			rt.svc.AutoUpdate(gCtx, changes, cfg.Manager.AutoUpdateDelay)
			return nil
		})
	}

	if cfg.Vault.Watch {
		g.Go(func() error {
			return collection.Watch(gCtx, rt.db, rt.store, cfg.Vault.Path, logger, func(kind, path string) {
				if changes == nil {
					return
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			})
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup once the server has shut down so the
// watcher and auto updates stop with it.
var errShutdown = errors.New("shutdown")
