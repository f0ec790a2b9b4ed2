package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/cusage/internal/pipeline"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full report as JSON or YAML",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "json", "Output format: json or yaml")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(flagExportFormat)
	if format != "json" && format != "yaml" && format != "yml" {
		return fmt.Errorf("unsupported format %q (want json or yaml)", flagExportFormat)
	}

	data, err := loadData()
	if err != nil {
		return err
	}
	r, err := data.report(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if flagExportOut != "" {
		f, err := os.Create(flagExportOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOut, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := writeReport(w, r, format); err != nil {
		return err
	}
	if flagExportOut != "" && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s report to %s\n", format, flagExportOut)
	}
	return nil
}

func writeReport(w io.Writer, r *pipeline.Report, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}
