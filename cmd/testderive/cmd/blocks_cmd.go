package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"testderive/internal/pipeline"
)

func newBlocksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks",
		Short: "List the helper and test blocks of the source",
		Long: `blocks lists every block found after the line range is extracted and the
token substituted: its kind, its name and its 1-based line span.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pipeline.New(a.cfg, a.logger, nil)
			src, err := p.ReadSource()
			if err != nil {
				return err
			}
			found, err := p.Blocks(src)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range found {
				fmt.Fprintf(out, "%-6s %-40s %d-%d\n", b.Kind, b.Name, b.Position.Start+1, b.Position.End+1)
			}
			return nil
		},
	}
}
