package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	File  string
	Plan  string
	Price string
	Theme string
}

// SetupValuesFromConfig seeds the form with the current configuration.
func SetupValuesFromConfig(cfg config.Config) SetupValues {
	return SetupValues{
		File:  cfg.General.DefaultFile,
		Plan:  cfg.General.DefaultPlan,
		Price: strconv.FormatFloat(cfg.Pricing.PricePerUnit, 'f', -1, 64),
		Theme: cfg.Appearance.Theme,
	}
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	plan, err := model.ParsePlanTier(v.Plan)
	if err != nil {
		return err
	}
	price, err := parsePrice(v.Price)
	if err != nil {
		return err
	}
	cfg.General.DefaultFile = strings.TrimSpace(v.File)
	cfg.General.DefaultPlan = plan.String()
	cfg.Pricing.PricePerUnit = price
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	return nil
}

// NewSetupForm builds the first-run form. recordCount is shown in the
// intro when data is already loaded; pass -1 to omit it.
func NewSetupForm(recordCount int, vals *SetupValues) *huh.Form {
	intro := "Let's set a few defaults. You can change them later with `cusage setup`."
	if recordCount >= 0 {
		intro = fmt.Sprintf("Loaded %d usage records. %s", recordCount, intro)
	}

	planOpts := make([]huh.Option[string], 0, len(model.PlanTiers))
	for _, p := range model.PlanTiers {
		planOpts = append(planOpts, huh.NewOption(p.Label(), p.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cusage").
				Description(intro),
			huh.NewInput().
				Title("Default export").
				Description("CSV file or directory of exports read when --file is not given.").
				Placeholder("~/Downloads/premium-requests.csv").
				Value(&vals.File).
				Validate(validateExportPath),
			huh.NewSelect[string]().
				Title("Plan tier").
				Description("Which quota limit to show next to each model.").
				Options(planOpts...).
				Value(&vals.Plan),
			huh.NewInput().
				Title("Price per excess request (USD)").
				Value(&vals.Price).
				Validate(func(s string) error {
					_, err := parsePrice(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(false)
}

// SaveSetup applies vals to the stored config and writes it back.
func SaveSetup(vals SetupValues) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if err := vals.Apply(&cfg); err != nil {
		return cfg, err
	}
	return cfg, config.Save(cfg)
}

func validateExportPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := os.Stat(s); err != nil {
		return errors.New("path does not exist")
	}
	return nil
}

func parsePrice(s string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || price < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return price, nil
}
