package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/agentic-research/wildcards/internal/mcpserver"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/agentic-research/wildcards/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) serveCmd() *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve [dataset]",
		Short: "Serve validate/resolve/find tools over MCP on stdio",
		Long: `Starts an MCP server on stdin/stdout. When a dataset is given it is
loaded up front and, unless --no-watch is set, reloaded whenever it changes.
Tools also accept a dataset per call.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *tree.Store
			if len(args) == 1 {
				store = tree.NewStore(nil, a.logger)
				w, err := watch.New(args[0], store, watch.WithLogger(a.logger), watch.WithDebounce(a.cfg.DebounceDuration()))
				if err != nil {
					return err
				}
				defer w.Stop()
				if res := w.Reload(); res.Err != nil {
					return res.Err
				}
				if !noWatch {
					ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
					defer stop()
					if err := w.Start(ctx); err != nil {
						return err
					}
				}
			}

			a.logger.Info("serving MCP on stdio", zap.Bool("dataset", store != nil))
			return mcpserver.Serve(mcpserver.NewTools(store, a.logger, a.cfg.MaxDepth), Version)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the dataset when it changes")
	return cmd
}
