package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/terminal-chat/internal/auth"
	"github.com/vovakirdan/terminal-chat/internal/config"
	"github.com/vovakirdan/terminal-chat/internal/core"
	"github.com/vovakirdan/terminal-chat/internal/store"
	"github.com/vovakirdan/terminal-chat/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/terminal-chat/internal/transport/http"
)

// App wires together storage, core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	hasher, err := auth.NewHasher(cfg.PasswordHasher)
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	st, err := sqlite.New(cfg.DatabasePath, sqlite.WithHistoryCap(cfg.HistoryCap))
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Int("history_cap", cfg.HistoryCap).Msg("database initialized")

	authService := auth.NewService(st, hasher)

	hub := core.NewHub(authService, st, core.Options{
		DefaultCommunity: cfg.DefaultCommunity,
		HistoryLimit:     cfg.HistoryLimit,
		StrictProtocol:   cfg.StrictProtocol,
	}, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go a.hub.Run(hubCtx)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		stopHub()
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			stopHub()
			a.cleanup()
			return err
		}

		stopHub()
		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
