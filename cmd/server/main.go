package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/questhall/questhall/internal/adapters/http"
	gateway "github.com/questhall/questhall/internal/adapters/signal"
	"github.com/questhall/questhall/internal/adapters/storage/sqlite"
	"github.com/questhall/questhall/internal/app"
	"github.com/questhall/questhall/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("store close")
		}
	}()

	registry := app.NewRegistry()
	rooms := app.NewRooms()
	chat := app.NewChat(store)

	ctl := gateway.NewController(registry, rooms, chat)
	ctl.ReadLimit = cfg.ReadLimit

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.APIPort),
		Handler: router.SetupRouter(cfg, store),
	}
	gatewaySrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.GatewayPort),
		Handler: router.SetupGateway(ctx, cfg, ctl),
	}

	go func() {
		log.Info().Str("addr", apiSrv.Addr).Msg("API server started")
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api server error")
		}
	}()
	go func() {
		log.Info().Str("addr", gatewaySrv.Addr).Msg("chat gateway started")
		if err := gatewaySrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("gateway server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := gatewaySrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("gateway forced to shutdown")
	}
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
