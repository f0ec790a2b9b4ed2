package tui

import (
	"testing"

	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/model"
)

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFromConfig(cfg)
	vals.Plan = "enterprise"
	vals.Price = "0.1"
	vals.Theme = "tokyo-night"
	vals.File = "  exports/  "

	if err := vals.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if plan, _ := cfg.PlanTier(); plan != model.PlanEnterprise {
		t.Errorf("plan = %v", plan)
	}
	if cfg.Pricing.PricePerUnit != 0.1 {
		t.Errorf("price = %v", cfg.Pricing.PricePerUnit)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("theme = %q", cfg.Appearance.Theme)
	}
	if cfg.General.DefaultFile != "exports/" {
		t.Errorf("file = %q", cfg.General.DefaultFile)
	}
}

func TestSetupValuesApplyRejectsBadInput(t *testing.T) {
	cfg := config.DefaultConfig()

	bad := SetupValuesFromConfig(cfg)
	bad.Price = "-1"
	if err := bad.Apply(&cfg); err == nil {
		t.Error("negative price accepted")
	}

	bad = SetupValuesFromConfig(cfg)
	bad.Plan = "galactic"
	if err := bad.Apply(&cfg); err == nil {
		t.Error("unknown plan accepted")
	}
}

func TestSaveSetupWritesConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	vals := SetupValuesFromConfig(config.DefaultConfig())
	vals.Plan = "individual"
	if _, err := SaveSetup(vals); err != nil {
		t.Fatalf("SaveSetup: %v", err)
	}
	if !config.Exists() {
		t.Fatal("config not written")
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.DefaultPlan != "individual" {
		t.Errorf("default plan = %q", cfg.General.DefaultPlan)
	}
}

func TestValidateExportPath(t *testing.T) {
	if err := validateExportPath(""); err != nil {
		t.Errorf("empty path rejected: %v", err)
	}
	if err := validateExportPath(t.TempDir()); err != nil {
		t.Errorf("existing dir rejected: %v", err)
	}
	if err := validateExportPath("/definitely/not/here.csv"); err == nil {
		t.Error("missing path accepted")
	}
}
