package cmd

import (
	"fmt"

	"github.com/agentic-research/wildcards/internal/grammar"
	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/agentic-research/wildcards/internal/resolver"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/spf13/cobra"
)

func (a *app) resolveCmd() *cobra.Command {
	var (
		seed     int64
		count    int
		samples  bool
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "resolve [dataset] [expression]",
		Short: "Expand a template expression against a dataset",
		Example: `  wildcards resolve wildcards.yaml '__clothing/shirts__ in {red|blue}'
  wildcards resolve wildcards/ '{2$$, $$__colors__}' -n 5 --seed 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ingest.Load(args[0])
			if err != nil {
				return err
			}

			var rng grammar.Rand
			switch {
			case cmd.Flags().Changed("seed"):
				rng = grammar.NewRand(uint64(seed))
			case a.cfg.Seed != nil:
				rng = grammar.NewRand(uint64(*a.cfg.Seed))
			}
			if !cmd.Flags().Changed("max-depth") {
				maxDepth = a.cfg.MaxDepth
			}
			if !cmd.Flags().Changed("count") && samples {
				count = a.cfg.Samples
			}

			r := resolver.New(tree.Fixed{Root: root}, rng, resolver.WithLogger(a.logger))
			out := cmd.OutOrStdout()
			if samples {
				for _, s := range r.Samples(args[1], count) {
					fmt.Fprintln(out, s)
				}
				return nil
			}
			for range max(count, 1) {
				fmt.Fprintln(out, r.Resolve(args[1], 0, maxDepth))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&seed, "seed", 0, "Seed for reproducible output")
	f.IntVarP(&count, "count", "n", 1, "Number of expansions")
	f.BoolVar(&samples, "samples", false, "Print distinct expansions that differ from the input")
	f.IntVar(&maxDepth, "max-depth", resolver.DefaultMaxDepth, "Maximum nesting depth")
	return cmd
}
