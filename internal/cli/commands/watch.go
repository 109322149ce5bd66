package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proofkit/proofkit/internal/cli/config"
	"github.com/proofkit/proofkit/internal/cli/ui"
	"github.com/proofkit/proofkit/internal/watch"
)

// NewTypegenWatchCommand creates the typegen watch command
func NewTypegenWatchCommand(shared *typegenFlags) *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate types whenever the metadata or config changes",
		Long: `Run typegen, then run it again every time a metadata source or the
config file changes.

Examples:
  proofkit typegen watch
  proofkit typegen watch --delay 500ms --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, shared)
			if err != nil {
				return err
			}

			logger, err := newLogger(shared.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &watchSession{
				ctx:    ctx,
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
				cfg:    cfg,
				flags:  &typegenFlags{configFile: shared.configFile, dir: shared.dir, verbose: shared.verbose},
				logger: logger,
			}
			return w.run(delay)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "Quiet period before regenerating")

	return cmd
}

// watchSession holds the state of one typegen watch invocation
type watchSession struct {
	ctx    context.Context
	out    io.Writer
	errOut io.Writer
	flags  *typegenFlags
	logger *zap.Logger

	mu  sync.Mutex
	cfg *config.Config
}

// watchedFiles returns the sources and the config file of cfg
func watchedFiles(cfg *config.Config) []string {
	files := cfg.SourcePaths()
	if cfg.File != "" {
		files = append(files, cfg.File)
	}
	return files
}

func (w *watchSession) run(delay time.Duration) error {
	w.generate()

	watcher, err := watch.NewFileWatcher(watchedFiles(w.cfg), w.onChange,
		watch.WithLogger(w.logger), watch.WithDelay(delay))
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}

	banner := color.New(color.FgCyan, color.Bold)
	if color.NoColor {
		banner.DisableColor()
	}
	fmt.Fprintln(w.out)
	banner.Fprintln(w.out, "Watching for metadata changes")
	for _, f := range watcher.Files() {
		fmt.Fprintf(w.out, "   %s\n", f)
	}
	fmt.Fprintln(w.out, "   Press Ctrl+C to stop")
	fmt.Fprintln(w.out)

	<-w.ctx.Done()

	fmt.Fprintln(w.out, "\nStopping...")
	return watcher.Stop()
}

// onChange reloads the config if it changed and regenerates
func (w *watchSession) onChange(files []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}

	if w.cfg.File != "" {
		configPath, err := filepath.Abs(w.cfg.File)
		if err == nil && slices.Contains(files, configPath) {
			w.reloadConfig()
		}
	}

	for _, f := range files {
		w.logger.Info("change detected", zap.String("path", f))
	}
	fmt.Fprintf(w.out, "\n%s changed, regenerating\n", filepath.Base(files[0]))
	w.generateLocked()
}

func (w *watchSession) reloadConfig() {
	cfg, err := config.Load(appFs, w.flags.dir, w.flags.configFile)
	if err != nil {
		fmt.Fprintln(w.errOut, ui.ConfigError(err.Error()+" (keeping the previous configuration)", color.NoColor))
		return
	}
	if !slices.Equal(watchedFiles(cfg), watchedFiles(w.cfg)) {
		fmt.Fprintln(w.out, ui.Warning("Metadata sources changed. Restart watch to pick up the new files.", color.NoColor))
	}
	w.cfg = cfg
}

func (w *watchSession) generate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.generateLocked()
}

// generateLocked runs typegen once. Failures are printed and watching goes on.
func (w *watchSession) generateLocked() {
	_, err := runTypegen(w.ctx, w.out, w.errOut, w.cfg, w.flags, w.logger)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(w.errOut, ui.Warning(err.Error(), color.NoColor))
	}
}
