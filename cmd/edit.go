package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/agentic-research/wildcards/internal/writeback"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// splitKeys turns "clothing/shirts" into tree keys. Keys are exact: edits
// are case-sensitive even though references are not.
func splitKeys(p string) []string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// edit loads a document, applies fn to a copy of its tree and saves the
// result back in place.
func (a *app) edit(path string, fn func(root *api.Node) error) error {
	if !ingest.IsDocument(path) {
		return fmt.Errorf("%s: editing needs a .yaml, .yml or .json document: %w", path, ingest.ErrUnsupported)
	}
	root, err := ingest.Load(path)
	if err != nil {
		return err
	}
	store := tree.NewStore(root, a.logger)
	if err := store.Update(fn); err != nil {
		return err
	}
	if err := writeback.Save(path, store.Snapshot()); err != nil {
		return err
	}
	a.logger.Debug("saved", zap.String("path", path))
	return nil
}

func (a *app) setCmd() *cobra.Command {
	var appendItems bool
	cmd := &cobra.Command{
		Use:   "set [document] [wildcard] [item...]",
		Short: "Replace or extend the list at a wildcard path",
		Example: `  wildcards set wildcards.yaml clothing/size S M L
  wildcards set wildcards.yaml colors teal --append`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := splitKeys(args[1])
			items := args[2:]
			return a.edit(args[0], func(root *api.Node) error {
				if appendItems {
					return tree.Append(root, keys, items...)
				}
				return tree.Set(root, keys, api.NewList("", items...))
			})
		},
	}
	cmd.Flags().BoolVarP(&appendItems, "append", "a", false, "Append to the list instead of replacing it")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [document] [wildcard]",
		Short: "Delete a list or group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := splitKeys(args[1])
			return a.edit(args[0], func(root *api.Node) error {
				return tree.Delete(root, keys)
			})
		},
	}
}

func (a *app) mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv [document] [wildcard] [new-name]",
		Short: "Rename a list or group in place",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := splitKeys(args[1])
			return a.edit(args[0], func(root *api.Node) error {
				return tree.Rename(root, keys, args[2])
			})
		},
	}
}

func (a *app) fmtCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "fmt [document...]",
		Short: "Rewrite documents in canonical YAML layout",
		Long: `Rewrites each document with two-space block style and original key
order. With --check nothing is written and the command exits 1 if any
document would change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := 0
			for _, path := range args {
				if !ingest.IsDocument(path) {
					return fmt.Errorf("%s: %w", path, ingest.ErrUnsupported)
				}
				content, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				out, diff, err := writeback.Format(content)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if !diff {
					continue
				}
				changed++
				fmt.Fprintln(cmd.OutOrStdout(), path)
				if check {
					continue
				}
				if err := writeback.WriteFile(path, out); err != nil {
					return err
				}
			}
			if check && changed > 0 {
				return fmt.Errorf("%d documents need formatting: %w", changed, errIssues)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Report documents that would change without writing")
	return cmd
}
