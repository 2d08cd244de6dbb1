package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/simpleknn"
)

// Config is the YAML configuration file of the command.
//
//	compute:
//	  k: 3
//	  window: 8
//	  mode: boxes
//	device:
//	  workers: 8
//	  memory_limit_bytes: 1073741824
//	log:
//	  level: debug
//	  format: json
//	min_dist2: 1e-7
type Config struct {
	Compute  simpleknn.Config       `yaml:"compute"`
	Device   simpleknn.DeviceConfig `yaml:"device"`
	Log      LogConfig              `yaml:"log"`
	MinDist2 float64                `yaml:"min_dist2"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// defaultConfig returns the configuration used when no file is given.
func defaultConfig() *Config {
	return &Config{
		Compute:  simpleknn.DefaultConfig(),
		Device:   simpleknn.DefaultDeviceConfig(),
		Log:      LogConfig{Level: "info", Format: "text"},
		MinDist2: simpleknn.DefaultMinDist2,
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks the settings the library does not check itself.
func (c *Config) validate() error {
	if c.Device.MemoryLimitBytes < 0 {
		return fmt.Errorf("device.memory_limit_bytes must be >= 0, got %d", c.Device.MemoryLimitBytes)
	}
	if c.Device.Workers < 0 {
		return fmt.Errorf("device.workers must be >= 0, got %d", c.Device.Workers)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// newLogger builds the command logger; logs always go to stderr so stdout
// stays clean for results.
func (c *Config) newLogger() (*simpleknn.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	if c.Log.Format == "json" {
		return simpleknn.NewJSONLogger(os.Stderr, level), nil
	}
	return simpleknn.NewTextLogger(os.Stderr, level), nil
}
