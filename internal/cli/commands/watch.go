package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/beanc/internal/cli/config"
	"github.com/conduit-lang/beanc/internal/cli/ui"
	"github.com/conduit-lang/beanc/internal/compiler/driver"
	"github.com/conduit-lang/beanc/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompile facts documents as they change",
		Long: `Compile the facts directory, then keep watching it and recompile each
facts document the analyzer rewrites.

Unchanged documents are served from the artifact cache, so only beans whose
facts changed are replayed. Failures are reported and watching continues.

Examples:
  # Watch the configured facts directory
  beanc watch

  # Watch with debug logging
  beanc watch --verbose
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log, verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			d, err := driver.New(driverConfig(cfg), logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			files, err := cfg.Build.FactsFiles()
			if err != nil {
				return err
			}
			if len(files) > 0 {
				if err := recompile(ctx, d, files, out, errOut, cfg.Build.OutputDir, verbose); err != nil {
					return err
				}
			}

			watcher, err := watch.NewFileWatcher(watch.Options{
				Dirs:    []string{cfg.Build.FactsDir},
				Ignored: []string{cfg.Build.OutputDir},
				Logger:  logger,
				OnRemove: func(path string) error {
					return forget(d, path, errOut)
				},
			}, func(changed []string) error {
				return recompile(ctx, d, changed, out, errOut, cfg.Build.OutputDir, verbose)
			})
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}

			banner := color.New(color.FgCyan, color.Bold)
			fmt.Fprintln(out)
			banner.Fprintf(out, "👀 Watching %s\n", cfg.Build.FactsDir)
			fmt.Fprintf(out, "   Artifacts: %s\n", cfg.Build.OutputDir)
			color.New(color.FgYellow).Fprintln(out, "   Press Ctrl+C to stop")
			fmt.Fprintln(out)

			<-ctx.Done()

			fmt.Fprintln(out, "\nShutting down...")
			if err := watcher.Stop(); err != nil {
				return fmt.Errorf("error stopping watcher: %w", err)
			}
			stats := d.CacheStats()
			logger.Debug("watch stopped",
				zap.Int("cache_hits", stats.Hits),
				zap.Int("cache_misses", stats.Misses),
				zap.Float64("cache_hit_rate", stats.HitRate()),
			)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	return cmd
}

// recompile compiles files and reports the outcome. Bean failures are
// reported, not returned.
func recompile(ctx context.Context, d *driver.Driver, files []string, out, errOut io.Writer, outputDir string, verbose bool) error {
	result, err := d.Compile(ctx, files)
	if err != nil {
		return err
	}
	writeReportTerminal(out, errOut, result, outputDir, verbose)
	return nil
}

// forget deletes what a removed facts file produced and reports it
func forget(d *driver.Driver, path string, errOut io.Writer) error {
	deleted, err := d.Forget(path)
	if len(deleted) > 0 {
		details := make([]string, len(deleted))
		for i, target := range deleted {
			details[i] = "deleted " + target
		}
		ui.WriteError(errOut, ui.ErrorOptions{
			Level:   ui.ErrorLevelWarning,
			Context: "FACTS REMOVED",
			Problem: path,
			Details: details,
		})
	}
	return err
}
