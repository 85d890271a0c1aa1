package graph

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/includefix/includegraph"
	"github.com/LegacyCodeHQ/includefix/internal/config"
	"github.com/LegacyCodeHQ/includefix/internal/logging"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	"github.com/spf13/cobra"
)

// Cmd represents the graph command.
var Cmd = NewCommand()

// NewCommand returns a new graph command instance.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the include graph the rewrite would produce",
		Long: `Parse every C/C++ file under the source directory, resolve each quoted
include the way the rewrite does, and print the resulting include graph.

Ambiguous resolutions are drawn as dashed edges and includes that match no
header are highlighted. Include cycles are reported on stderr.

Examples:
  includefix graph -s ./src -i ./include
  includefix graph -s ./src -i "./a;./b" -f mermaid`,
		RunE: runGraph,
	}

	config.AddPipelineFlags(cmd.Flags())
	cmd.Flags().StringP(config.KeyFormat, "f", string(includegraph.FormatDOT), "Output format: dot or mermaid")

	return cmd
}

func runGraph(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Source == "" {
		return fmt.Errorf("--source is required")
	}

	format, err := includegraph.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	policy, err := rewrite.ParsePolicy(cfg.TieBreak)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)

	index := rewrite.BuildIndex(cfg.IncludeRoots, cfg.Source, cfg.HeaderExtensions)
	g, err := includegraph.Build(cfg.Source, index, policy)
	if err != nil {
		return err
	}

	cycles, err := g.Cycles()
	if err != nil {
		return err
	}
	for _, cycle := range cycles {
		logger.Warn("include cycle", "files", strings.Join(cycle, ", "))
	}
	unresolved, err := g.Unresolved()
	if err != nil {
		return err
	}
	for _, inc := range unresolved {
		logger.Debug("unresolved include", "path", inc)
	}

	output, err := g.Render(format)
	if err != nil {
		return fmt.Errorf("failed to format graph: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), output)
	return err
}
