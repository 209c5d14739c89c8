package cmd

import (
	"fmt"
	"time"

	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [source] [output.db]",
		Short: "Build a SQLite snapshot of a dataset",
		Long: `Loads a dataset from a document or directory and writes it, with its
reference index, to a SQLite database that every other command accepts.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, output := args[0], args[1]
			start := time.Now()

			root, err := ingest.Load(source)
			if err != nil {
				return err
			}
			if err := ingest.Build(root, output); err != nil {
				return fmt.Errorf("build %s: %w", output, err)
			}

			leaves := tree.Leaves(root)
			items := tree.CountItems(root)
			a.logger.Info("built snapshot",
				zap.String("source", source),
				zap.String("output", output),
				zap.Duration("took", time.Since(start)))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d lists, %d items to %s\n", len(leaves), items, output)
			return nil
		},
	}
}
