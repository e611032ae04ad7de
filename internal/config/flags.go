package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagAddr       = flag.String("addr", "", "HTTP listen address")
	flagWindowed   = flag.Bool("windowed", false, "Run the preview in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run the preview in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Preview window / capture width")
	flagHeight     = flag.Int("height", 0, "Preview window / capture height")
	flagFrames     = flag.Int("frames", 0, "Number of frames to capture")
	flagOut        = flag.String("out", "", "Capture output directory")
	flagGIFStep    = flag.Int("gif-step", -1, "Capture a GIF keeping every Nth frame (0 writes a PNG)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagWindowed {
		cfg.Preview.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Preview.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Preview.Width = *flagWidth
		cfg.Capture.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Preview.Height = *flagHeight
		cfg.Capture.Height = *flagHeight
	}
	if *flagFrames > 0 {
		cfg.Capture.Frames = *flagFrames
	}
	if *flagOut != "" {
		cfg.Capture.OutputDir = *flagOut
	}
	if *flagGIFStep >= 0 {
		cfg.Capture.GIFStep = *flagGIFStep
	}
}
