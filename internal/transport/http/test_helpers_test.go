package http

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/terminal-chat/internal/auth"
	"github.com/vovakirdan/terminal-chat/internal/config"
	"github.com/vovakirdan/terminal-chat/internal/core"
	"github.com/vovakirdan/terminal-chat/internal/store/sqlite"
)

// createTestHub starts a hub backed by an in-memory SQLite store.
func createTestHub(t *testing.T) *core.Hub {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	hub := core.NewHub(auth.NewService(st, nil), st, core.Options{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

// createTestConfig returns a config suitable for httptest servers.
func createTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	return &cfg
}
