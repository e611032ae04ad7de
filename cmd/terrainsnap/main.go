// Package main renders terrain frames offscreen and writes them as a PNG
// or an animated GIF.
package main

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/neolithic-site/internal/capture"
	"github.com/Faultbox/neolithic-site/internal/config"
	"github.com/Faultbox/neolithic-site/internal/logger"
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

	c := cfg.Capture
	logger.Info("recording terrain",
		zap.Int("width", c.Width),
		zap.Int("height", c.Height),
		zap.Int("frames", c.Frames),
		zap.Int("gif_step", c.GIFStep),
	)

	start := time.Now()
	rec, err := capture.Record(cfg.Terrain.Params(), capture.Options{
		Width:      c.Width,
		Height:     c.Height,
		Frames:     c.Frames,
		GIFStep:    c.GIFStep,
		Background: color.RGBA{R: 17, G: 17, B: 17, A: 255},
	})
	if err != nil {
		logger.Error("recording failed", zap.Error(err))
		os.Exit(1)
	}

	w := capture.NewWriter(c.OutputDir, c.Prefix)
	path, err := w.Save(rec, capture.GIFDelay(c.GIFStep, 60))
	if err != nil {
		logger.Error("saving failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("capture written",
		zap.String("path", path),
		zap.Int("kept_frames", len(rec.Frames)),
		zap.Duration("took", time.Since(start)),
	)
}
