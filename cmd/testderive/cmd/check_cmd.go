package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"testderive/internal/pipeline"
	"testderive/internal/report"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the derived output is up to date",
		Long: `check derives the output in memory and compares it with the file on disk.
It prints a unified diff and exits non-zero when the two differ.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pipeline.New(a.cfg, a.logger, nil).Generate()
			if err != nil {
				return err
			}
			current, err := os.ReadFile(res.OutputPath)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return &pipeline.IOError{Op: "read", Path: res.OutputPath, Err: err}
			}
			diff, err := report.UnifiedDiff(res.OutputPath, current, res.Document.Bytes())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if diff == "" {
				fmt.Fprintf(out, "%s is up to date\n", res.OutputPath)
				return nil
			}
			a.logger.Warn("Derived output is stale", zap.String("path", res.OutputPath))
			fmt.Fprint(out, diff)
			return ErrStale
		},
	}
}
