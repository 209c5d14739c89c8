// Package cmd implements the wildcards command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/agentic-research/wildcards/internal/config"
	"github.com/agentic-research/wildcards/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Exit codes.
const (
	ExitOK     = 0
	ExitIssues = 1
	ExitFailed = 2
)

// errIssues marks a run that worked but found problems above the
// configured threshold.
var errIssues = errors.New("issues found")

// app carries what every subcommand shares once the root has run.
type app struct {
	configPath string
	verbose    bool
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "wildcards",
		Short: "Validate, resolve and edit wildcard template datasets",
		Long: `wildcards works with hierarchical wildcard datasets: YAML or JSON
documents, directories of .txt lists, or SQLite snapshots built from them.

Templates reference lists with __path__, choose with {a|b}, weight with
{10::a|1::b}, multiselect with {2$$, $$a|b|c} and repeat with N#__path__.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = a.logLevel
			}
			a.logger, err = logging.New(level, a.verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to config file (default ./"+config.FileName+" if present)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")
	pf.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	root.AddCommand(
		a.validateCmd(),
		a.resolveCmd(),
		a.lintCmd(),
		a.buildCmd(),
		a.queryCmd(),
		a.refsCmd(),
		a.setCmd(),
		a.rmCmd(),
		a.mvCmd(),
		a.fmtCmd(),
		a.watchCmd(),
		a.serveCmd(),
	)
	return root
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errIssues):
		return ExitIssues
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return ExitFailed
	}
}

// Execute runs the root command and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
