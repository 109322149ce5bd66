package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/proofkit/proofkit/internal/cli/config"
	"github.com/proofkit/proofkit/internal/cli/ui"
	"github.com/proofkit/proofkit/internal/typegen/metadata"
)

var formatOptions = []string{
	string(metadata.FormatAuto),
	string(metadata.FormatEDMX),
	string(metadata.FormatLayout),
	string(metadata.FormatJSON),
}

type initFlags struct {
	interactive  bool
	sources      []string
	format       string
	outDir       string
	generatedDir string
	tables       []string
}

// NewTypegenInitCommand creates the typegen init command
func NewTypegenInitCommand(shared *typegenFlags) *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a typegen config file",
		Long: `Create proofkit-typegen.yaml in the project directory.

An existing config file is never overwritten.

Examples:
  proofkit typegen init --source metadata.xml
  proofkit typegen init --source layouts/Customers.json --format layout --out-dir src/schema
  proofkit typegen init --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, shared, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "Prompt for each setting")
	cmd.Flags().StringSliceVarP(&flags.sources, "source", "s", nil, "Metadata source file (repeatable)")
	cmd.Flags().StringVar(&flags.format, "format", "", "Source format (auto, edmx, layout, json)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "schema", "Directory for generated and override files")
	cmd.Flags().StringVar(&flags.generatedDir, "generated-dir", "generated", "Subdirectory of out-dir for generated files")
	cmd.Flags().StringSliceVar(&flags.tables, "tables", nil, "Only generate these tables")

	return cmd
}

func runInit(cmd *cobra.Command, shared *typegenFlags, flags *initFlags) error {
	noColor := color.NoColor
	infoColor := color.New(color.FgCyan)
	if noColor {
		infoColor.DisableColor()
	}

	target := shared.configFile
	if target == "" {
		target = filepath.Join(shared.dir, config.FileName+".yaml")
	}

	exists, err := afero.Exists(appFs, target)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", target, err)
	}
	if exists {
		return fmt.Errorf("config file already exists: %s", target)
	}

	if flags.interactive {
		if err := promptInit(flags); err != nil {
			return err
		}
	}

	if len(flags.sources) == 0 {
		return fmt.Errorf("at least one --source is required (or use --interactive)")
	}
	if _, err := metadata.ParseFormat(flags.format); err != nil {
		return err
	}

	cfg := &config.Config{
		OutDir:       flags.outDir,
		GeneratedDir: flags.generatedDir,
		Tables:       flags.tables,
	}
	for _, src := range flags.sources {
		cfg.Sources = append(cfg.Sources, config.SourceConfig{Path: src, Format: flags.format})
	}

	if err := config.Save(appFs, target, cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ui.WriteSuccess(out, fmt.Sprintf("Created %s", target), noColor)
	fmt.Fprintln(out)
	infoColor.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  proofkit typegen")
	return nil
}

// promptInit fills flags from interactive prompts, using the flag values as defaults
func promptInit(flags *initFlags) error {
	defaultSource := "metadata.xml"
	if len(flags.sources) > 0 {
		defaultSource = flags.sources[0]
	}

	var source string
	if err := survey.AskOne(&survey.Input{
		Message: "Metadata source file:",
		Default: defaultSource,
		Help:    "OData $metadata (EDMX), a Data API layout metadata response, or a JSON table list",
	}, &source, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	flags.sources = []string{strings.TrimSpace(source)}

	format := flags.format
	if format == "" {
		format = string(metadata.FormatAuto)
	}
	if err := survey.AskOne(&survey.Select{
		Message: "Source format:",
		Options: formatOptions,
		Default: format,
	}, &format); err != nil {
		return err
	}
	flags.format = format

	if err := survey.AskOne(&survey.Input{
		Message: "Output directory:",
		Default: flags.outDir,
	}, &flags.outDir, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Generated files subdirectory:",
		Default: flags.generatedDir,
	}, &flags.generatedDir, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	var tables string
	if err := survey.AskOne(&survey.Input{
		Message: "Tables to generate (comma separated, empty for all):",
		Default: strings.Join(flags.tables, ", "),
	}, &tables); err != nil {
		return err
	}
	flags.tables = nil
	for _, t := range strings.Split(tables, ",") {
		if t = strings.TrimSpace(t); t != "" {
			flags.tables = append(flags.tables, t)
		}
	}

	return nil
}
