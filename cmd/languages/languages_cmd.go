package languages

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/includefix/headerindex"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	"github.com/spf13/cobra"
)

// Cmd represents the languages command.
var Cmd = NewCommand()

// NewCommand returns a new languages command instance.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the file extensions that are rewritten and indexed",
		Long: `List the file extensions whose #include lines are rewritten and the
extensions catalogued as include targets by default.

Examples:
  includefix languages`,
		RunE: runLanguages,
	}

	return cmd
}

func runLanguages(cmd *cobra.Command, _ []string) error {
	lines := []string{
		fmt.Sprintf("Rewritten (%s)", strings.Join(rewrite.EligibleExtensions, ", ")),
		fmt.Sprintf("Indexed (%s)", headerindex.DefaultHeaderExtension),
		fmt.Sprintf("Tie-break policies (%s)", strings.Join(rewrite.PolicyNames(), ", ")),
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}

	return nil
}
