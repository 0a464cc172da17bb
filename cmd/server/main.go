package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/boulin/eventverse/internal/buildinfo"
	"github.com/boulin/eventverse/internal/logging"
	"github.com/boulin/eventverse/internal/server"
	"github.com/boulin/eventverse/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg := config.LoadConfig()

	logger, err := logging.NewZapProduction(cfg.Development)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
