package cmd

import (
	"fmt"
	"strings"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/spf13/cobra"
)

func (a *app) refsCmd() *cobra.Command {
	var unused bool
	cmd := &cobra.Command{
		Use:   "refs [dataset] [wildcard]",
		Short: "List the templates that reference a wildcard",
		Long: `Prints the path of every template that would draw from the wildcard,
including pattern references such as __*/size__. With --unused, prints the
lists nothing references instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !unused && len(args) != 2 {
				return fmt.Errorf("refs needs a wildcard unless --unused is set")
			}
			ref := ""
			if len(args) == 2 {
				ref = strings.TrimSuffix(strings.TrimPrefix(args[1], "__"), "__")
			}

			// Snapshots carry a prebuilt exact-match index.
			if isSnapshot(args[0]) && !unused {
				paths, err := ingest.ReferencingPaths(args[0], tree.Normalize(ref))
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(out, p)
				}
				return nil
			}

			root, err := ingest.Load(args[0])
			if err != nil {
				return err
			}
			store := tree.NewStore(root, a.logger)
			if unused {
				for _, p := range store.Unreferenced() {
					fmt.Fprintln(out, p)
				}
				return nil
			}
			for _, e := range store.Refs(ref) {
				path := append(append([]string{}, e.Keys...), api.IndexSegment(e.Index))
				fmt.Fprintf(out, "%s\t%s\n", api.FormatPath(path), e.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unused, "unused", false, "List wildcards nothing references")
	return cmd
}

func isSnapshot(path string) bool {
	p := strings.ToLower(path)
	return strings.HasSuffix(p, ".db") || strings.HasSuffix(p, ".sqlite")
}
