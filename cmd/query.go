package cmd

import (
	"fmt"

	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func (a *app) queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [dataset] [jsonpath]",
		Short: "Select parts of a dataset with JSONPath",
		Example: `  wildcards query wildcards.yaml '$.clothing.*'
  wildcards query wildcards.db '$..size[0]'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ingest.Load(args[0])
			if err != nil {
				return err
			}
			results, err := ingest.Query(root, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(results, &oj.Options{Indent: 2, Sort: true}))
			return nil
		},
	}
}
