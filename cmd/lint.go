package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/wildcards/internal/config"
	"github.com/agentic-research/wildcards/internal/linter"
	"github.com/agentic-research/wildcards/internal/writeback"
	"github.com/spf13/cobra"
)

func (a *app) lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [file...]",
		Short: "Check raw YAML/JSON datasets and wildcards.hcl for syntax problems",
		Long: `Reports syntax errors, duplicate keys and keys without values in
dataset documents, and syntax or setting errors in HCL config files.
Exits 1 when anything is found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			found := 0
			for _, path := range args {
				lines, err := lintFile(path)
				if err != nil {
					return err
				}
				for _, l := range lines {
					fmt.Fprintln(out, l)
				}
				found += len(lines)
			}
			if found > 0 {
				return fmt.Errorf("%d problems: %w", found, errIssues)
			}
			return nil
		},
	}
}

// lintFile returns "path:line:col: message" lines for one file.
func lintFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, se := range writeback.SyntaxErrors(content, path) {
		out = append(out, se.Error())
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		if len(out) > 0 {
			return out, nil
		}
		diags, err := linter.Lint(content)
		if err != nil {
			return nil, err
		}
		for _, d := range diags {
			out = append(out, fmt.Sprintf("%s:%d:%d: %s", path, d.Line+1, d.Column+1, d.Message))
		}
	case ".hcl":
		if len(out) > 0 {
			return out, nil
		}
		if _, err := config.Parse(path, content); err != nil {
			out = append(out, err.Error())
		}
	default:
		return nil, fmt.Errorf("lint %s: unsupported file type", path)
	}
	return out, nil
}
