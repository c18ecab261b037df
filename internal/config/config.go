// Package config loads run settings from an optional JSON file, an optional
// .env file and the process environment, in that order of precedence (later
// wins).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/contactkeval/option-greeks/internal/logger"
)

// Environment variable names.
const (
	EnvRiskFreeRate = "OG_RISK_FREE_RATE"
	EnvShock        = "OG_SHOCK"
	EnvWorkers      = "OG_WORKERS"
	EnvListenAddr   = "OG_LISTEN_ADDR"
	EnvOutputDir    = "OG_OUTPUT_DIR"
	EnvVerbosity    = "OG_VERBOSITY"
)

// Config holds everything the CLI and server need besides per-request inputs.
type Config struct {
	RiskFreeRate float64 `json:"risk_free_rate"`      // annual, decimal
	Shock        float64 `json:"shock,omitempty"`     // relative spot move for jump scenarios
	Workers      int     `json:"workers,omitempty"`   // concurrent position evaluations
	ListenAddr   string  `json:"listen_addr,omitempty"`
	OutputDir    string  `json:"output_dir,omitempty"`
	Verbosity    string  `json:"verbosity,omitempty"` // error|info|debug|trace
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		RiskFreeRate: 0.05,
		Shock:        0.10,
		Workers:      4,
		ListenAddr:   ":8080",
		OutputDir:    "out",
		Verbosity:    "info",
	}
}

// Load builds a Config from defaults, then jsonPath (if non-empty), then
// envPath (if the file exists), then the environment.
func Load(jsonPath, envPath string) (Config, error) {
	cfg := Default()

	if jsonPath != "" {
		b, err := os.ReadFile(jsonPath)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", jsonPath, err)
		}
	}

	if envPath != "" {
		// godotenv.Load never overrides variables already set in the process.
		if err := godotenv.Load(envPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return cfg, fmt.Errorf("loading %s: %w", envPath, err)
			}
			logger.Debugf("%s not found, using process environment only", envPath)
		} else {
			logger.Debugf("%s loaded", envPath)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvRiskFreeRate); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRiskFreeRate, err)
		}
		cfg.RiskFreeRate = f
	}
	if v, ok := os.LookupEnv(EnvShock); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvShock, err)
		}
		cfg.Shock = f
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}
	if v, ok := os.LookupEnv(EnvListenAddr); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv(EnvOutputDir); ok {
		cfg.OutputDir = v
	}
	if v, ok := os.LookupEnv(EnvVerbosity); ok {
		cfg.Verbosity = v
	}
	return nil
}

// Validate rejects settings no run can use.
func (c Config) Validate() error {
	if c.Shock < 0 || c.Shock >= 1 {
		return fmt.Errorf("shock %v must be in [0, 1)", c.Shock)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d must be at least 1", c.Workers)
	}
	if _, err := logger.ParseLevel(c.Verbosity); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level; Validate has already checked it.
func (c Config) Level() logger.Level {
	l, _ := logger.ParseLevel(c.Verbosity)
	return l
}
