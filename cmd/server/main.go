package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/RMblue101/anarcroom-server/internal/config"
	"github.com/RMblue101/anarcroom-server/internal/room"
	"github.com/RMblue101/anarcroom-server/internal/server"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	store := room.NewStore(room.Config{
		HistoryLimit: cfg.HistoryLimit,
		IdleTimeout:  cfg.IdleTimeout,
	}, logger)

	gateway := server.NewGateway(store, cfg, logger)
	go gateway.Run()

	reaper := room.NewReaper(store, cfg.ReapInterval, logger)
	go reaper.Run()

	router := server.NewRouter(logger, gateway)
	srv := server.NewServer(cfg.Addr(), router)

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting anarcroom server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	if err := server.ShutdownServer(srv, 30*time.Second); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}

	reaper.Stop()

	if err := gateway.Shutdown(10 * time.Second); err != nil {
		logger.Warn().Err(err).Msg("gateway shutdown timed out")
	}

	logger.Info().Msg("server stopped")
}
