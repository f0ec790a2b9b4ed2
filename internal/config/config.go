// Package config holds cusage configuration, the model plan table, and
// excess-cost pricing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/cusage/internal/model"
)

// Config holds all cusage configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Pricing    PricingConfig    `toml:"pricing"`
	Plans      PlanOverrides    `toml:"plans"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultPlan string `toml:"default_plan"`
	DefaultFile string `toml:"default_file,omitempty"`
	LogLevel    string `toml:"log_level,omitempty"`
}

// PricingConfig holds excess-cost pricing.
type PricingConfig struct {
	PricePerUnit float64 `toml:"price_per_unit"`
}

// PlanOverrides allows user-defined multipliers and limits for specific models.
type PlanOverrides struct {
	Overrides map[string]ModelPlanOverride `toml:"overrides,omitempty"`
}

// ModelPlanOverride holds per-model plan overrides. Nil fields keep the
// built-in value.
type ModelPlanOverride struct {
	Multiplier *float64 `toml:"multiplier,omitempty"`
	Individual *float64 `toml:"individual,omitempty"`
	Business   *float64 `toml:"business,omitempty"`
	Enterprise *float64 `toml:"enterprise,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds daemon defaults.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultPlan: model.DefaultPlanTier.String(),
		},
		Pricing: PricingConfig{
			PricePerUnit: DefaultPricePerUnit,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cusage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cusage")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies .env and environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := loadDotEnv(); err != nil {
		return cfg, err
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// PlanTier returns the configured default plan tier.
func (c Config) PlanTier() (model.PlanTier, error) {
	return model.ParsePlanTier(c.General.DefaultPlan)
}

// PlanTable returns the built-in model plan table with this config's
// overrides applied.
func (c Config) PlanTable() PlanTable {
	return DefaultPlanTable().WithOverrides(c.Plans.Overrides)
}

// PricingFunc returns the excess-cost pricing for this config.
func (c Config) PricingFunc() PricingFunc {
	return PerUnitPricing(c.Pricing.PricePerUnit)
}
