package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ledgerviz/config"
	"ledgerviz/internal/kraken/collector"
	"ledgerviz/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run collector until interrupted
	if err := collector.Start(ctx, cfg, log); err != nil {
		log.Fatal("collector failed", zap.Error(err))
	}
}
