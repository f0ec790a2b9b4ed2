// Package cmd implements the cusage CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/logutil"
	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/pipeline"
	"github.com/theirongolddev/cusage/internal/source"
	"github.com/theirongolddev/cusage/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagFiles    []string
	flagPlan     string
	flagNoCache  bool
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "cusage",
	Short: "Premium request usage analytics",
	Long: "Analyze premium request usage exports: quota compliance, per-model volume,\n" +
		"power users, and the cost of requests over quota.",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		fmt.Fprint(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&flagFiles, "file", "f", nil, "Usage export CSV file or directory (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagPlan, "plan", "", "Plan tier for quota limits: individual, business, enterprise")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

var logger = logutil.New("cusage")

func setupLogging(_ *cobra.Command, _ []string) error {
	level := flagLogLevel
	if level == "" {
		if cfg, err := config.Load(); err == nil {
			level = cfg.General.LogLevel
		}
	}
	if err := logutil.Configure(level); err != nil {
		return err
	}
	logger = logutil.New("cusage")
	return nil
}

// settings is the resolved configuration for one command invocation.
type settings struct {
	cfg   config.Config
	paths []string
	plan  model.PlanTier
}

func (s settings) reportOptions() pipeline.ReportOptions {
	return pipeline.ReportOptions{
		Plan:    s.plan,
		Plans:   s.cfg.PlanTable(),
		Pricing: s.cfg.PricingFunc(),
	}
}

// loadSettings merges config file, environment and flags. Flags win.
func loadSettings() (settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return settings{}, err
	}

	planName := cfg.General.DefaultPlan
	if flagPlan != "" {
		planName = flagPlan
	}
	plan, err := model.ParsePlanTier(planName)
	if err != nil {
		return settings{}, err
	}

	paths := flagFiles
	if len(paths) == 0 && cfg.General.DefaultFile != "" {
		paths = []string{cfg.General.DefaultFile}
	}
	if len(paths) == 0 {
		return settings{}, errors.New("no usage export given: pass --file or run `cusage setup`")
	}

	return settings{cfg: cfg, paths: paths, plan: plan}, nil
}

// dataset is the loaded record set plus the settings that produced it.
type dataset struct {
	settings
	records []model.UsageRecord
}

// report builds every derived view for the dataset.
func (d *dataset) report(ctx context.Context) (*pipeline.Report, error) {
	return pipeline.BuildReport(ctx, d.records, d.reportOptions())
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData() (*dataset, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", strings.Join(s.paths, ", "))
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoCache {
		records, ok, err := loadCached(s.paths, progressFn)
		if err != nil {
			return nil, err
		}
		if ok {
			return &dataset{settings: s, records: records}, nil
		}
	}

	result, err := pipeline.Load(s.paths, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s records from %d files    \n",
			cli.FormatRequests(float64(len(result.Records))), result.TotalFiles)
	}
	return &dataset{settings: s, records: result.Records}, nil
}

// loadCached runs the cache-assisted load. ok is false when the cache is
// unusable and the caller should fall back to a full parse. Ingestion
// failures are returned as errors since a full parse would fail the same way.
func loadCached(paths []string, progressFn pipeline.ProgressFunc) ([]model.UsageRecord, bool, error) {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		logger.Warn("cache unavailable, doing full parse", "err", err)
		return nil, false, nil
	}
	defer func() { _ = cache.Close() }()

	cr, err := pipeline.LoadWithCache(paths, cache, progressFn)
	if err != nil {
		var ie *source.IngestionError
		if errors.As(err, &ie) {
			return nil, false, err
		}
		logger.Warn("cache error, falling back to full parse", "err", err)
		return nil, false, nil
	}

	if cr.CacheErrors > 0 {
		logger.Warn("some files could not be cached", "count", cr.CacheErrors)
	}
	if !flagQuiet && cr.TotalFiles > 0 {
		if cr.Reparsed == 0 {
			fmt.Fprintf(os.Stderr, "\r  Loaded %s records from cache (%d files)    \n",
				cli.FormatRequests(float64(len(cr.Records))), cr.TotalFiles)
		} else {
			fmt.Fprintf(os.Stderr, "\r  %d cached + %d reparsed (%s records)    \n",
				cr.CacheHits, cr.Reparsed, cli.FormatRequests(float64(len(cr.Records))))
		}
	}
	logger.Debug("load complete", "files", cr.TotalFiles, "hits", cr.CacheHits, "reparsed", cr.Reparsed)
	return cr.Records, true, nil
}

// describeError renders a command failure for the terminal. Ingestion
// failures use the same wording as the upload screen and name the file.
func describeError(err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  Error: %s\n", source.UserFacingMessage(err))
	var fe *pipeline.FileError
	if errors.As(err, &fe) {
		fmt.Fprintf(&b, "  File:  %s\n", fe.Path)
	}
	return b.String()
}

// noData prints the empty-dataset notice shared by every report command.
func noData(d *dataset) bool {
	if len(d.records) > 0 {
		return false
	}
	fmt.Println("\n  No usage records found in " + strings.Join(d.paths, ", "))
	return true
}
