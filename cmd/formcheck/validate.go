package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	formcheck "github.com/goliatone/go-formcheck"
	"github.com/goliatone/go-formcheck/pkg/engine"
	"github.com/goliatone/go-formcheck/pkg/metrics"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

var errBlocked = errors.New("form cannot be completed")

type validateFlags struct {
	cfg      Config
	failOn   bool
	warnings bool
	metrics  bool
}

var validateOpts validateFlags

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate form data and print the result",
	Long: `Validate runs the required, component and schema passes over every page
(or only --page) and prints the validation tree.

Examples:
  formcheck validate --layouts ./layouts --models ./models --data data.yaml
  formcheck validate -c formcheck.yaml --output json --fail`,
	RunE: runValidate,
}

func init() {
	registerConfigFlags(validateCmd, &validateOpts.cfg)
	validateCmd.Flags().BoolVar(&validateOpts.failOn, "fail", false, "exit non-zero when errors block completion")
	validateCmd.Flags().BoolVar(&validateOpts.warnings, "warnings", false, "include warnings and info in text output")
	validateCmd.Flags().BoolVar(&validateOpts.metrics, "metrics", false, "write engine metrics to stderr in Prometheus text format")
	rootCmd.AddCommand(validateCmd)
}

// registerConfigFlags binds the flags shared by validate and watch.
func registerConfigFlags(cmd *cobra.Command, cfg *Config) {
	cmd.Flags().StringVar(&cfg.Layouts, "layouts", "", "directory of page layouts and Settings.json")
	cmd.Flags().StringVar(&cfg.Models, "models", "", "directory of data model schemas")
	cmd.Flags().StringVar(&cfg.TypeID, "type", "", "data model type id (defaults to the only model)")
	cmd.Flags().StringVar(&cfg.Data, "data", "", "form data file (YAML or JSON)")
	cmd.Flags().StringVar(&cfg.Attachments, "attachments", "", "attachments file keyed by component id")
	cmd.Flags().StringVar(&cfg.Resources, "resources", "", "text resources file (key to text)")
	cmd.Flags().StringVar(&cfg.Locale, "locale", "", "message locale")
	cmd.Flags().StringVar(&cfg.Page, "page", "", "validate only this page")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "output format: text or json")
	cmd.Flags().BoolVar(&cfg.KeepRequired, "keep-required", false, "report schema required issues")
}

func resolveConfig(flags Config) (Config, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return Config{}, err
	}
	return override(cfg, flags)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(validateOpts.cfg)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr())
	registry, options := metricsOptions(validateOpts.metrics)
	ws, err := loadWorkspace(cmd.Context(), cfg, logger, options...)
	if err != nil {
		return err
	}
	result, err := ws.engine.ValidateForm(cmd.Context(), ws.state)
	if err != nil {
		return err
	}
	if err := printResult(cmd.OutOrStdout(), cfg.Output, result, validateOpts.warnings); err != nil {
		return err
	}
	if registry != nil {
		if err := metrics.WriteText(cmd.ErrOrStderr(), registry); err != nil {
			return err
		}
	}
	if validateOpts.failOn && !formcheck.CanFormBeSaved(result, validation.SubmitModeComplete) {
		return errBlocked
	}
	return nil
}

// metricsOptions returns a private registry and the engine option recording
// into it, or nothing when metrics are off.
func metricsOptions(enabled bool) (*prometheus.Registry, []engine.Option) {
	if !enabled {
		return nil, nil
	}
	registry := prometheus.NewRegistry()
	return registry, []engine.Option{engine.WithMetrics(metrics.NewCollector(registry))}
}

func printResult(w io.Writer, format string, result validation.Result, all bool) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	severities := []validation.Severity{validation.SeverityError}
	if all {
		severities = append(severities, validation.SeverityWarning, validation.SeverityInfo)
	}
	entries := validation.Summary(result.Validations, severities...)
	for _, entry := range entries {
		target := entry.Component + "." + entry.Binding
		if entry.Unmapped {
			target = entry.Binding
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Severity, entry.Layout, target, entry.Message)
	}
	if result.InvalidDataTypes {
		fmt.Fprintln(w, "data has type-level violations: saving is blocked")
	}
	fmt.Fprintf(w, "%d error(s)\n", result.Validations.Count(validation.SeverityError))
	return nil
}
