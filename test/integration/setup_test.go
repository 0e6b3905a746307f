// Package integration contains integration tests for the Anarcroom server.
//
// These tests verify that the components work together by exercising the
// complete system with real HTTP servers and WebSocket connections.
package integration

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/RMblue101/anarcroom-server/internal/config"
	"github.com/RMblue101/anarcroom-server/internal/room"
	"github.com/RMblue101/anarcroom-server/internal/server"
	"github.com/RMblue101/anarcroom-server/test/testhelpers"
)

type testServer struct {
	http    *httptest.Server
	gateway *server.Gateway
	store   *room.Store
}

func defaultTestConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		AllowedOrigins: []string{"*"},
		MaxMessageSize: 4096,
		RateLimit:      config.RateLimitConfig{Burst: 1000, RefillInterval: time.Second},
		HistoryLimit:   500,
		ReapInterval:   time.Hour,
		IdleTimeout:    time.Hour,
	}
}

// startTestServer wires a store, gateway, reaper, and router the way main
// does and tears everything down when the test finishes.
func startTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	if cfg == nil {
		cfg = defaultTestConfig()
	}

	logger := zerolog.Nop()
	store := room.NewStore(room.Config{
		HistoryLimit: cfg.HistoryLimit,
		IdleTimeout:  cfg.IdleTimeout,
	}, logger)

	gateway := server.NewGateway(store, cfg, logger)
	go gateway.Run()

	reaper := room.NewReaper(store, cfg.ReapInterval, logger)
	go reaper.Run()

	ts := testhelpers.CreateTestServer(server.NewRouter(logger, gateway))

	t.Cleanup(func() {
		ts.Close()
		reaper.Stop()
		_ = gateway.Shutdown(2 * time.Second)
	})

	return &testServer{http: ts, gateway: gateway, store: store}
}
