package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proofkit/proofkit/internal/cli/config"
	"github.com/proofkit/proofkit/internal/cli/ui"
	"github.com/proofkit/proofkit/internal/typegen"
)

// typegenFlags are shared by typegen and its subcommands
type typegenFlags struct {
	configFile string
	dir        string
	verbose    bool
	check      bool
	jsonOutput bool
}

// NewTypegenCommand creates the typegen command
func NewTypegenCommand() *cobra.Command {
	flags := &typegenFlags{}

	cmd := &cobra.Command{
		Use:   "typegen",
		Short: "Generate TypeScript types and validators from FileMaker metadata",
		Long: `Generate one TypeScript module per FileMaker table occurrence.

Each table gets a generated file, rewritten on every run, and an override
file that is created once and never touched again. Customize your types in
the override file.

Configuration is read from proofkit-typegen.yaml (or .yml/.json) in the
project directory. PROOFKIT_* environment variables and a .env file next to
the config override its values.

Examples:
  # Generate into the configured out_dir
  proofkit typegen

  # Fail if generated files are stale (CI)
  proofkit typegen --check

  # Machine-readable report
  proofkit typegen --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logger, err := newLogger(flags.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			_, err = runTypegen(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, flags, logger)
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Path to the config file")
	cmd.PersistentFlags().StringVar(&flags.dir, "dir", ".", "Project directory")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show verbose output")
	cmd.Flags().BoolVar(&flags.check, "check", false, "Report out-of-date files without writing")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the report as JSON")

	cmd.AddCommand(NewTypegenInitCommand(flags))
	cmd.AddCommand(NewTypegenWatchCommand(flags))

	return cmd
}

// loadConfig loads the project configuration, printing a formatted error on failure
func loadConfig(cmd *cobra.Command, flags *typegenFlags) (*config.Config, error) {
	cfg, err := config.Load(appFs, flags.dir, flags.configFile)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), color.NoColor))
		return nil, errReported
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// runTypegen performs one generation and prints its report. It returns
// errReported when the run had errors so the exit code is non-zero.
func runTypegen(ctx context.Context, out, errOut io.Writer, cfg *config.Config, flags *typegenFlags, logger *zap.Logger) (*typegen.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	noColor := color.NoColor

	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintln(errOut, ui.ConfigError(err.Error(), noColor))
		return nil, errReported
	}
	opts.Check = flags.check
	opts.Logger = logger

	var report *typegen.Report
	spin := !flags.jsonOutput && !noColor
	err = ui.WithSpinner(errOut, "Generating types...", spin, noColor, func() error {
		var runErr error
		report, runErr = typegen.Run(ctx, appFs, opts)
		return runErr
	})
	if err != nil {
		var overrideErr *typegen.OverrideError
		if errors.As(err, &overrideErr) {
			ui.WriteDiagnostics(errOut, overrideErr.Diagnostics, false, noColor)
			return nil, errReported
		}
		return nil, err
	}

	if flags.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
	} else {
		printReport(out, report, opts.Layout.OutDir, noColor)
	}

	if report.HasErrors() {
		return report, errReported
	}
	return report, nil
}

func printReport(w io.Writer, report *typegen.Report, outDir string, noColor bool) {
	if len(report.Tables) > 0 {
		ui.WriteReport(w, report.Tables, noColor)
		fmt.Fprintln(w)
	}

	for _, name := range report.Missing {
		fmt.Fprintln(w, ui.TableNotFound(name, ui.FindSimilar(name, report.Available), noColor))
	}
	ui.WriteDiagnostics(w, report.AllDiagnostics(), report.Check, noColor)

	failed := len(report.Tables) - report.Succeeded()
	switch {
	case report.Check && report.HasErrors():
		fmt.Fprintln(w, ui.Warning("Generated types are out of date. Run `proofkit typegen` to update them.", noColor))
	case report.Check:
		ui.WriteSuccess(w, "Generated types are up to date", noColor)
	case failed > 0:
		fmt.Fprintln(w, ui.Warning(fmt.Sprintf("Generated %d of %d table(s) into %s; %d failed", report.Succeeded(), len(report.Tables), outDir, failed), noColor))
	default:
		ui.WriteSuccess(w, fmt.Sprintf("Generated %d table(s) into %s", report.Succeeded(), outDir), noColor)
	}
}
