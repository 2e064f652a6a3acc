// Package config handles skykeep configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Config holds all settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Assets  AssetsConfig  `yaml:"assets"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds frame loop and rasterizer settings.
type RenderConfig struct {
	FPS            int    `yaml:"fps"`
	Background     string `yaml:"background"`       // Hex color, e.g. "#10141c"
	MaxTextureSize int    `yaml:"max_texture_size"` // Larger textures are downsampled; 0 disables
	Backface       bool   `yaml:"backface"`         // Draw back faces too
}

// BackgroundColor parses Background.
func (r RenderConfig) BackgroundColor() (color.RGBA, error) {
	c, err := colorful.Hex(r.Background)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("render.background: %w", err)
	}
	red, green, blue := c.RGB255()
	return color.RGBA{red, green, blue, 255}, nil
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	MinDistance     float64 `yaml:"min_distance"`
	MaxDistance     float64 `yaml:"max_distance"`
	InitialDistance float64 `yaml:"initial_distance"`
	PanSensitivity  float64 `yaml:"pan_sensitivity"` // Radians per cell of drag
	Smoothing       string  `yaml:"smoothing"`       // "exponential" or "spring"
	SmoothingFactor float64 `yaml:"smoothing_factor"`
	SpringFrequency float64 `yaml:"spring_frequency"`
	SpringDamping   float64 `yaml:"spring_damping"`
}

// AssetsConfig holds manifest and fetch settings.
type AssetsConfig struct {
	Manifest    string        `yaml:"manifest"` // Empty uses the embedded manifest
	BaseDir     string        `yaml:"base_dir"` // Root for relative handles
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// SessionConfig holds the local session source.
type SessionConfig struct {
	Token string `yaml:"token"`
	Skip  bool   `yaml:"skip"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string   `yaml:"level"`
	LogFile string   `yaml:"log_file"`
	Mute    []string `yaml:"mute"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			FPS:            30,
			Background:     "#10141c",
			MaxTextureSize: 512,
		},
		Camera: CameraConfig{
			MinDistance:     40,
			MaxDistance:     180,
			InitialDistance: 90,
			PanSensitivity:  0.02,
			Smoothing:       "exponential",
			SmoothingFactor: 0.15,
			SpringFrequency: 6,
			SpringDamping:   1,
		},
		Assets: AssetsConfig{
			BaseDir: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
