package headers

import (
	"fmt"
	"io"
	"strings"

	"github.com/LegacyCodeHQ/includefix/headerindex"
	"github.com/LegacyCodeHQ/includefix/internal/config"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	"github.com/spf13/cobra"
)

const keyAmbiguousOnly = "ambiguous-only"

// Cmd represents the headers command.
var Cmd = NewCommand()

// NewCommand returns a new headers command instance.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headers",
		Short: "List the header index built from the include directories",
		Long: `List every header name found in the include directories (and the source
directory, when given) together with the paths an include would be rewritten to.
Names found more than once are marked [ambiguous]; the first path listed is the
one the default tie-break picks.

Examples:
  includefix headers -i "./external;./lib/include"
  includefix headers -i ./include -s ./src --ambiguous-only`,
		RunE: runHeaders,
	}

	config.AddPipelineFlags(cmd.Flags())
	cmd.Flags().Bool(keyAmbiguousOnly, false, "Only list header names found more than once")

	return cmd
}

func runHeaders(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if len(cfg.IncludeRoots) == 0 && cfg.Source == "" {
		return fmt.Errorf("at least one of --includes or --source is required")
	}
	ambiguousOnly, err := cmd.Flags().GetBool(keyAmbiguousOnly)
	if err != nil {
		return err
	}

	roots := cfg.IncludeRoots
	if cfg.Source != "" {
		roots = append(append([]string(nil), roots...), cfg.Source)
	}
	index := headerindex.Build(roots, headerindex.WithExtensions(cfg.HeaderExtensions...))

	policy, err := rewrite.ParsePolicy(cfg.TieBreak)
	if err != nil {
		return err
	}
	return writeIndex(cmd.OutOrStdout(), index, policy, ambiguousOnly)
}

func writeIndex(w io.Writer, index *headerindex.Index, policy rewrite.Policy, ambiguousOnly bool) error {
	var sb strings.Builder
	for _, name := range index.Basenames() {
		entry, _ := index.Lookup(name)
		if ambiguousOnly && !entry.IsAmbiguous() {
			continue
		}
		if entry.IsAmbiguous() {
			fmt.Fprintf(&sb, "%s [ambiguous, %s: %s]\n", name, policy.Name(), policy.Choose(entry.Candidates))
		} else {
			fmt.Fprintf(&sb, "%s\n", name)
		}
		for _, candidate := range entry.Candidates {
			fmt.Fprintf(&sb, "  %s\n", candidate)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
