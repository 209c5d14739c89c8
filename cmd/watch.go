package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/report"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/agentic-research/wildcards/internal/watch"
	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dataset]",
		Short: "Re-validate a dataset every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			text := report.NewText(cmd.OutOrStdout())
			store := tree.NewStore(nil, a.logger)
			w, err := watch.New(args[0], store,
				watch.WithLogger(a.logger),
				watch.WithDebounce(a.cfg.DebounceDuration()),
				watch.WithOnChange(func(r watch.Result) {
					if r.Err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), "reload failed:", r.Err)
						return
					}
					counts := api.CountIssues(r.Issues)
					_ = text.Render(args[0], api.FilterIssues(r.Issues, a.cfg.MinSeverity), counts)
				}))
			if err != nil {
				return err
			}
			defer w.Stop()

			if res := w.Reload(); res.Err != nil {
				return res.Err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
}
