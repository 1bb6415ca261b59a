package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to run the analysis engine.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Detector DetectorConfig `yaml:"detector"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the dashboard HTTP listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// DataConfig locates the CSV snapshot directory.
type DataConfig struct {
	Path string `yaml:"path"`
}

// DetectorConfig controls the isolation forest and flagging behaviour.
type DetectorConfig struct {
	// Contamination is the assumed anomalous fraction of the data, in (0, 0.5].
	Contamination float64 `yaml:"contamination"`
	Seed          int64   `yaml:"seed"`
	Trees         int     `yaml:"trees"`
	SampleSize    int     `yaml:"sampleSize"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DRIVEHEALTH_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Path: "training_data/",
		},
		Detector: DetectorConfig{
			Contamination: 0.01,
			Seed:          42,
			Trees:         100,
			SampleSize:    256,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DRIVEHEALTH_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("DRIVEHEALTH_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("DRIVEHEALTH_DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("DRIVEHEALTH_CONTAMINATION"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Detector.Contamination = c
		}
	}
	if v := os.Getenv("DRIVEHEALTH_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Detector.Seed = seed
		}
	}
	if v := os.Getenv("DRIVEHEALTH_DETECTOR_TREES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Detector.Trees = n
		}
	}
	if v := os.Getenv("DRIVEHEALTH_DETECTOR_SAMPLE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Detector.SampleSize = n
		}
	}
	if v := os.Getenv("DRIVEHEALTH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DRIVEHEALTH_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("DRIVEHEALTH_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
}
