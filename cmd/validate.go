package cmd

import (
	"fmt"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/config"
	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/agentic-research/wildcards/internal/report"
	"github.com/agentic-research/wildcards/internal/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type fileResult struct {
	path   string
	issues []api.Issue
	counts api.IssueCounts
}

func (a *app) validateCmd() *cobra.Command {
	var format, minSeverity, only, failOn string

	cmd := &cobra.Command{
		Use:   "validate [dataset...]",
		Short: "Check every template in one or more datasets",
		Long: `Loads each dataset and reports structural errors, unresolved references
and suspicious patterns. Exits 1 when issues reach the fail_on threshold.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if cmd.Flags().Changed("format") {
				cfg.Format = format
			}
			if cmd.Flags().Changed("min-severity") {
				cfg.MinSeverity = minSeverity
			}
			if cmd.Flags().Changed("fail-on") {
				cfg.FailOn = failOn
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			results := make([]fileResult, len(args))
			var g errgroup.Group
			for i, path := range args {
				g.Go(func() error {
					root, err := ingest.Load(path)
					if err != nil {
						return err
					}
					v := validator.New(a.logger)
					issues := v.Validate(root)
					results[i] = fileResult{path: path, issues: issues, counts: v.Counts()}
					a.logger.Debug("validated", zap.String("path", path), zap.Int("issues", len(issues)))
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			var total api.IssueCounts
			text := report.NewText(cmd.OutOrStdout())
			for _, r := range results {
				shown := report.Only(api.FilterIssues(r.issues, cfg.MinSeverity), only)
				var err error
				if cfg.Format == config.FormatJSON {
					err = report.JSON(cmd.OutOrStdout(), r.path, shown, r.counts)
				} else {
					err = text.Render(r.path, shown, r.counts)
				}
				if err != nil {
					return err
				}
				total.Errors += r.counts.Errors
				total.Warnings += r.counts.Warnings
				total.Info += r.counts.Info
				total.Total += r.counts.Total
			}

			if cfg.FailsOn(total) {
				return fmt.Errorf("%d errors, %d warnings: %w", total.Errors, total.Warnings, errIssues)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", config.FormatText, "Output format: text or json")
	f.StringVar(&minSeverity, "min-severity", "all", "Lowest severity to show: error, warning, info or all")
	f.StringVar(&only, "only", "all", "Show a single severity: error, warning, info or all")
	f.StringVar(&failOn, "fail-on", config.FailOnError, "Exit 1 on: error, warning or never")
	return cmd
}
