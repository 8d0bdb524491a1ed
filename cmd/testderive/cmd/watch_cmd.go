package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"testderive/internal/clock"
	"testderive/internal/pipeline"
	"testderive/internal/report"
	"testderive/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the output whenever its inputs change",
		Long: `watch generates the output once, then regenerates it each time the source,
the exclusions file or the configuration file is saved. Ctrl-C stops it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd, debounce)
		},
	}
	watchCmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before regenerating")
	return watchCmd
}

func (a *app) watchedPaths() []string {
	paths := []string{a.cfg.Source()}
	if p := a.cfg.Exclusions(); p != "" {
		paths = append(paths, p)
	}
	if _, err := os.Stat(a.configPath); err == nil {
		paths = append(paths, a.configPath)
	}
	return paths
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command, debounce time.Duration) error {
	// The first run must succeed; later failures are logged and waited out.
	if err := a.regenerate(cmd); err != nil {
		return err
	}

	w, err := watch.New(a.watchedPaths(), debounce, clock.RealClock{})
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()
	a.logger.Info("Watching for changes", zap.Strings("paths", a.watchedPaths()))

	configAbs, _ := filepath.Abs(a.configPath)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Received shutdown signal")
			return nil
		case err := <-w.Errors():
			a.logger.Warn("File watcher error", zap.Error(err))
		case path := <-w.Changes():
			a.logger.Debug("Change detected", zap.String("path", path))
			if path == configAbs {
				cfg, err := a.loadConfig()
				if err != nil {
					a.logger.Error("Failed to reload configuration", zap.Error(err))
					continue
				}
				a.cfg = cfg
			}
			if err := a.regenerate(cmd); err != nil {
				a.logger.Error("Regeneration failed", zap.Error(err))
			}
		}
	}
}

func (a *app) regenerate(cmd *cobra.Command) error {
	res, err := pipeline.New(a.cfg, a.logger, nil).Run()
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), res.Summary(), isTerminal(cmd.OutOrStdout()))
}
