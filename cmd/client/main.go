package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/boulin/eventverse/internal/buildinfo"
	"github.com/boulin/eventverse/internal/client/cli"
	"github.com/boulin/eventverse/internal/client/config"
	"github.com/boulin/eventverse/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
