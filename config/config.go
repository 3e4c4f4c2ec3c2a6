package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim     SimConfig     `toml:"sim"`
	Window  WindowConfig  `toml:"window"`
	Logging LoggingConfig `toml:"logging"`
	Record  RecordConfig  `toml:"record"`
}

type SimConfig struct {
	TickRate      int    `toml:"tick_rate"` // ticks per second
	Scene         string `toml:"scene"`
	PrefabsDir    string `toml:"prefabs_dir"`
	ResetOnAttach bool   `toml:"reset_on_attach"` // clear controller state when it takes over an actor
	Watch         bool   `toml:"watch"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RecordConfig struct {
	Controller string `toml:"controller"` // empty disables recording
	Path       string `toml:"path"`
}

// Load reads path over the defaults. A missing file is an error; use Default
// when no config file is given.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Default() *Config {
	return defaults()
}

func (c *Config) Validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tick_rate must be positive, got %d", c.Sim.TickRate)
	}
	if c.Sim.Scene == "" {
		return fmt.Errorf("sim.scene is required")
	}
	if c.Record.Controller != "" && c.Record.Path == "" {
		return fmt.Errorf("record.path is required when record.controller is set")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate:   60,
			Scene:      "scene.yaml",
			PrefabsDir: "prefabs",
		},
		Window: WindowConfig{
			Title:  "possess",
			Width:  960,
			Height: 640,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
