package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvPlan         = "CUSAGE_PLAN"
	EnvPricePerUnit = "CUSAGE_PRICE_PER_UNIT"
	EnvLogLevel     = "CUSAGE_LOG_LEVEL"
	EnvFile         = "CUSAGE_FILE"
)

// envPaths returns the .env files to try, most specific first.
func envPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	paths = append(paths, filepath.Join(Dir(), ".env"))
	return paths
}

// loadDotEnv loads every .env file that exists. Variables already present
// in the environment are never overwritten. A file that exists but does not
// parse is an error.
func loadDotEnv() error {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPlan); v != "" {
		cfg.General.DefaultPlan = v
	}
	if v := os.Getenv(EnvFile); v != "" {
		cfg.General.DefaultFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv(EnvPricePerUnit); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return fmt.Errorf("%s: invalid price %q", EnvPricePerUnit, v)
		}
		cfg.Pricing.PricePerUnit = price
	}
	return nil
}
