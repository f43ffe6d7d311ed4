package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/RoyceAzure/lab/furnimart/internal/app"
	"github.com/RoyceAzure/lab/furnimart/internal/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	core, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build app")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := core.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start background services")
	}
	defer core.Shutdown()

	log.Info().Msg("furnimart core started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
}
