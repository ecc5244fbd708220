// Package main provides the battle server binary: a gRPC service that runs
// card battles between players and AI opponents.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/config"
	"github.com/cory-johannsen/cardbattle/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "battleserver")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	app, cleanup, err := initializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing server", zap.Error(err))
	}
	defer cleanup()

	logger.Info("battle server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("grpc_addr", cfg.Server.Addr()),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("ai_policy", cfg.AI.Policy),
	)

	if err := app.Lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("active battles at exit", zap.Int("count", app.Handler.ActiveBattles()))
}
