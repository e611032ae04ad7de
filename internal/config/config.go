// Package config handles site and renderer configuration loading.
package config

import (
	"time"

	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
)

// Config holds all settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Terrain TerrainConfig `yaml:"terrain"`
	Stream  StreamConfig  `yaml:"stream"`
	Preview PreviewConfig `yaml:"preview"`
	Capture CaptureConfig `yaml:"capture"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// TerrainConfig mirrors terrain.Params in YAML form.
type TerrainConfig struct {
	GridX           int        `yaml:"grid_x"`
	GridZ           int        `yaml:"grid_z"`
	CellSize        float64    `yaml:"cell_size"`
	BaseHeightScale float64    `yaml:"base_height_scale"`
	Speed           float64    `yaml:"speed"`
	Amplitude       float64    `yaml:"amplitude"`
	FrequencyX      float64    `yaml:"frequency_x"`
	FrequencyZ      float64    `yaml:"frequency_z"`
	FocalLength     float64    `yaml:"focal_length"`
	CameraPosition  [3]float64 `yaml:"camera_position"`
	CameraPitch     float64    `yaml:"camera_pitch"` // radians
	CameraYaw       float64    `yaml:"camera_yaw"`   // radians
	StrokeColor     [4]uint8   `yaml:"stroke_color"` // RGBA, non-premultiplied
	StrokeWidth     float64    `yaml:"stroke_width"`
}

// StreamConfig holds WebSocket terrain stream settings.
type StreamConfig struct {
	FPS         int `yaml:"fps"`
	MaxWidth    int `yaml:"max_width"`
	MaxHeight   int `yaml:"max_height"`
	WriteBuffer int `yaml:"write_buffer"` // frames queued per viewer before dropping
}

// PreviewConfig holds desktop preview window settings.
type PreviewConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CaptureConfig holds offline frame export settings.
type CaptureConfig struct {
	OutputDir string `yaml:"output_dir"`
	Prefix    string `yaml:"prefix"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Frames    int    `yaml:"frames"`
	GIFStep   int    `yaml:"gif_step"` // keep every Nth frame; 0 writes a single PNG
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	p := terrain.DefaultParams()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    64 << 10,
		},
		Terrain: TerrainFromParams(p),
		Stream: StreamConfig{
			FPS:         60,
			MaxWidth:    4096,
			MaxHeight:   4096,
			WriteBuffer: 4,
		},
		Preview: PreviewConfig{
			Title:      "Neolithic terrain",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Capture: CaptureConfig{
			OutputDir: "frames",
			Prefix:    "terrain",
			Width:     1280,
			Height:    720,
			Frames:    600,
			GIFStep:   0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// TerrainFromParams converts renderer parameters to their YAML form.
func TerrainFromParams(p terrain.Params) TerrainConfig {
	c := p.Stroke.Color
	return TerrainConfig{
		GridX:           p.GridX,
		GridZ:           p.GridZ,
		CellSize:        p.CellSize,
		BaseHeightScale: p.BaseHeightScale,
		Speed:           p.Speed,
		Amplitude:       p.Wave.Amplitude,
		FrequencyX:      p.Wave.FreqX,
		FrequencyZ:      p.Wave.FreqZ,
		FocalLength:     p.Camera.FocalLength,
		CameraPosition:  [3]float64{p.Camera.Position.X, p.Camera.Position.Y, p.Camera.Position.Z},
		CameraPitch:     p.Camera.Pitch,
		CameraYaw:       p.Camera.Yaw,
		StrokeColor:     [4]uint8{c.R, c.G, c.B, c.A},
		StrokeWidth:     p.Stroke.Width,
	}
}

// Params converts the YAML form back to renderer parameters.
func (t TerrainConfig) Params() terrain.Params {
	p := terrain.DefaultParams()
	p.GridX = t.GridX
	p.GridZ = t.GridZ
	p.CellSize = t.CellSize
	p.BaseHeightScale = t.BaseHeightScale
	p.Speed = t.Speed
	p.Wave.Amplitude = t.Amplitude
	p.Wave.FreqX = t.FrequencyX
	p.Wave.FreqZ = t.FrequencyZ
	p.Camera.FocalLength = t.FocalLength
	p.Camera.Position.X = t.CameraPosition[0]
	p.Camera.Position.Y = t.CameraPosition[1]
	p.Camera.Position.Z = t.CameraPosition[2]
	p.Camera.Pitch = t.CameraPitch
	p.Camera.Yaw = t.CameraYaw
	p.Stroke.Color.R = t.StrokeColor[0]
	p.Stroke.Color.G = t.StrokeColor[1]
	p.Stroke.Color.B = t.StrokeColor[2]
	p.Stroke.Color.A = t.StrokeColor[3]
	p.Stroke.Width = t.StrokeWidth
	return p
}
