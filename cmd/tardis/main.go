package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bradsherman/tardis-node/internal/infrastructure/config"
	"github.com/bradsherman/tardis-node/internal/infrastructure/logger"
	"github.com/bradsherman/tardis-node/internal/infrastructure/svc"
	"github.com/bradsherman/tardis-node/internal/infrastructure/venue"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	logger.Setup("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service initialization failed")
	}
	defer sc.Close()

	log.Info().
		Str("config", *configPath).
		Strs("exchanges", cfg.GetEnabledExchanges()).
		Strs("registered", venue.Names()).
		Str("metrics", cfg.Metrics.Addr).
		Msg("tardis started")

	if err := sc.Run(ctx); err != nil {
		log.Error().Err(err).Msg("feed exited")
	}
}
