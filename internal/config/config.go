package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Motion    MotionConfig    `yaml:"motion" toml:"motion"`
	Sensor    SensorConfig    `yaml:"sensor" toml:"sensor"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// ServerConfig is the default connection target. Host and Port are kept
// as entered so they go through the same validation as typed input.
type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port string `yaml:"port" toml:"port"`
	Path string `yaml:"path" toml:"path"`
}

type TransportConfig struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout" toml:"connect_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval" toml:"ping_interval"`
	PongTimeout    time.Duration `yaml:"pong_timeout" toml:"pong_timeout"`
	CloseTimeout   time.Duration `yaml:"close_timeout" toml:"close_timeout"`
}

type MotionConfig struct {
	Sensitivity float64 `yaml:"sensitivity" toml:"sensitivity"`
	Threshold   float64 `yaml:"threshold" toml:"threshold"`
}

type SensorConfig struct {
	Source         string        `yaml:"source" toml:"source"`
	Path           string        `yaml:"path" toml:"path"`
	RateHz         int           `yaml:"rate_hz" toml:"rate_hz"`
	TiltStep       float64       `yaml:"tilt_step" toml:"tilt_step"`
	SweepAmplitude float64       `yaml:"sweep_amplitude" toml:"sweep_amplitude"`
	SweepPeriod    time.Duration `yaml:"sweep_period" toml:"sweep_period"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	// File is the log destination; "-" logs to stderr.
	File string `yaml:"file" toml:"file"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Path: "/ws",
		},
		Transport: TransportConfig{
			ConnectTimeout: 10 * time.Second,
			WriteTimeout:   5 * time.Second,
			PingInterval:   30 * time.Second,
			PongTimeout:    60 * time.Second,
			CloseTimeout:   2 * time.Second,
		},
		Motion: MotionConfig{
			Sensitivity: 250,
			Threshold:   0.1,
		},
		Sensor: SensorConfig{
			Source:         "manual",
			RateHz:         60,
			TiltStep:       0.002,
			SweepAmplitude: 0.02,
			SweepPeriod:    4 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			File:  "mousephone.log",
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load reads a YAML or TOML file (by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file (or an empty path) yields
// the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	t := c.Transport
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"transport.connect_timeout", t.ConnectTimeout},
		{"transport.write_timeout", t.WriteTimeout},
		{"transport.ping_interval", t.PingInterval},
		{"transport.pong_timeout", t.PongTimeout},
		{"transport.close_timeout", t.CloseTimeout},
		{"sensor.sweep_period", c.Sensor.SweepPeriod},
	} {
		if d.v <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.v)
		}
	}
	if c.Motion.Sensitivity <= 0 {
		return fmt.Errorf("motion.sensitivity must be positive, got %v", c.Motion.Sensitivity)
	}
	if c.Motion.Threshold <= 0 {
		return fmt.Errorf("motion.threshold must be positive, got %v", c.Motion.Threshold)
	}
	if c.Sensor.RateHz <= 0 {
		return fmt.Errorf("sensor.rate_hz must be positive, got %d", c.Sensor.RateHz)
	}
	switch c.Sensor.Source {
	case "manual", "sweep":
	case "jsonl":
		if strings.TrimSpace(c.Sensor.Path) == "" {
			return fmt.Errorf("sensor.path is required for the jsonl source")
		}
	default:
		return fmt.Errorf("sensor.source %q is not one of manual, sweep, jsonl", c.Sensor.Source)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path %q must start with /", c.Server.Path)
	}
	return nil
}
