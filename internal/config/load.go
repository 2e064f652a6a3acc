package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Overrides carries command-line values. Zero values leave the config unchanged.
type Overrides struct {
	ConfigPath string
	Debug      bool
	NoAuth     bool
	FPS        int
	Manifest   string
	LogFile    string
}

// TokenEnv names the environment variable that supplies a session token.
const TokenEnv = "SKYKEEP_SESSION_TOKEN"

// Load loads configuration with priority: defaults < file < environment < flags.
func Load(o Overrides) (*Config, error) {
	cfg := Default()

	configPath := o.ConfigPath
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if token := os.Getenv(TokenEnv); token != "" {
		cfg.Session.Token = token
	}
	applyOverrides(cfg, o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the camera and loop cannot run with.
func (c *Config) Validate() error {
	if c.Render.FPS <= 0 {
		return fmt.Errorf("render.fps must be positive, got %d", c.Render.FPS)
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance {
		return fmt.Errorf("camera distance range [%v, %v] is invalid", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if _, err := c.Render.BackgroundColor(); err != nil {
		return err
	}
	switch c.Camera.Smoothing {
	case "exponential", "spring":
	default:
		return fmt.Errorf("camera.smoothing must be exponential or spring, got %q", c.Camera.Smoothing)
	}
	return nil
}

// applyOverrides applies CLI flag overrides to the config.
func applyOverrides(cfg *Config, o Overrides) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.NoAuth {
		cfg.Session.Skip = true
	}
	if o.FPS > 0 {
		cfg.Render.FPS = o.FPS
	}
	if o.Manifest != "" {
		cfg.Assets.Manifest = o.Manifest
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./skykeep.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "skykeep")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "skykeep")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "skykeep")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "skykeep")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
