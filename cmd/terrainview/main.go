// Package main opens a desktop window with the animated terrain.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/neolithic-site/internal/config"
	"github.com/Faultbox/neolithic-site/internal/logger"
	"github.com/Faultbox/neolithic-site/internal/preview"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Neolithic terrain preview ===")

	app, err := preview.New(cfg)
	if err != nil {
		logger.Error("failed to create preview", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.Error("preview error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("preview closed normally")
}
