package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"testderive/internal/config"
)

// ErrStale is returned by check when the output on disk differs from what
// would be generated.
var ErrStale = errors.New("derived output is stale")

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	source     string
	output     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	// ownLogger is set when the logger was built here and must be synced.
	ownLogger bool
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "testderive",
		Short: "Derive a variant test source from an existing one",
		Long: `testderive slices a line range out of a test source, substitutes a token,
removes excluded helper routines and test cases by their block boundaries and
reports whether the number of surviving tests matches what was expected.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.ownLogger && a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.regenerate(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", config.DefaultFile, "path to the YAML configuration")
	flags.StringVar(&a.source, "source", "", "source file (overrides source_path)")
	flags.StringVar(&a.output, "output", "", "output file (overrides output_path)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newCheckCmd(a), newBlocksCmd(a), newWatchCmd(a))
	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger == nil {
		logger, err := buildLogger(cfg.Logging.Level, a.verbose)
		if err != nil {
			return err
		}
		a.logger = logger
		a.ownLogger = true
	}
	a.logger = a.logger.With(zap.String("run_id", uuid.NewString()))
	a.logger.Debug("Configuration loaded",
		zap.String("config", a.configPath),
		zap.String("base_dir", cfg.BaseDir()),
		zap.String("source", cfg.Source()),
		zap.String("output", cfg.Output()))
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	// Flag paths are relative to the working directory, not the config file.
	if a.source != "" {
		if cfg.SourcePath, err = filepath.Abs(a.source); err != nil {
			return nil, fmt.Errorf("failed to resolve --source: %w", err)
		}
	}
	if a.output != "" {
		if cfg.OutputPath, err = filepath.Abs(a.output); err != nil {
			return nil, fmt.Errorf("failed to resolve --output: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: logging.level: %v", config.ErrInvalid, err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// isTerminal reports whether w is a terminal that can render colours.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		if !errors.Is(err, ErrStale) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
