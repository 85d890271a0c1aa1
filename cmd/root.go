package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/LegacyCodeHQ/includefix/cmd/graph"
	"github.com/LegacyCodeHQ/includefix/cmd/headers"
	"github.com/LegacyCodeHQ/includefix/cmd/languages"
	"github.com/LegacyCodeHQ/includefix/cmd/watch"
	"github.com/LegacyCodeHQ/includefix/internal/config"
	"github.com/LegacyCodeHQ/includefix/internal/logging"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	"github.com/spf13/cobra"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// ErrUsage reports that usage text was printed because the arguments could not be parsed.
var ErrUsage = errors.New("invalid usage")

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCommand()

// NewRootCommand returns the includefix command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "includefix -i <include dirs> -s <source-dir> -o <output-dir>",
		Short: "Rewrite quoted #include paths to point at their real headers",
		Long: `includefix rewrites #include "..." directives in a tree of C/C++ sources so
that every quoted path points at the header's location relative to one of the
given include directories.

Headers are looked up by file name. When several include directories contain a
header with the same name the first one found is used and a warning is printed.
The source directory is always searched after the include directories.

Examples:
  includefix -s ./src -i "./external;./lib/include" -o ./fixed
  includefix -s ./src -i ./include -o ./fixed --dry-run -v`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          runFix,
	}

	config.AddGlobalFlags(cmd.PersistentFlags())
	config.AddPipelineFlags(cmd.Flags())
	cmd.Flags().StringP(config.KeyOutput, "o", "", "Output directory")
	cmd.Flags().Bool(config.KeyDryRun, false, "Process files and print the summary without writing output")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		printUsage(c, c.OutOrStdout(), err)
		return ErrUsage
	})

	cmd.AddCommand(headers.NewCommand())
	cmd.AddCommand(graph.NewCommand())
	cmd.AddCommand(watch.NewCommand())
	cmd.AddCommand(languages.NewCommand())

	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations["buildDate"] = buildDate
	cmd.Annotations["commit"] = commit
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if code := exitCode(err); code != 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(code)
	}
}

// exitCode maps a command error to a process status. Usage problems exit 0
// so existing automation that relies on it keeps working.
func exitCode(err error) int {
	if err == nil || errors.Is(err, ErrUsage) {
		return 0
	}
	return 1
}

func printUsage(cmd *cobra.Command, w io.Writer, reason error) {
	if reason != nil {
		fmt.Fprintln(w, reason)
	}
	fmt.Fprint(w, cmd.UsageString())
}

func runFix(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	if missing := cfg.Missing(config.KeyIncludes, config.KeySource, config.KeyOutput); len(missing) > 0 {
		printUsage(cmd, cmd.OutOrStdout(), nil)
		return nil
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)
	policy, err := rewrite.ParsePolicy(cfg.TieBreak)
	if err != nil {
		return err
	}

	logger.Info("Include", "dirs", cfg.IncludeRoots)
	logger.Info("Source", "dir", cfg.Source)
	logger.Info("Output", "dir", cfg.Output)
	if cfg.File != "" {
		logger.Debug("config file loaded", "path", cfg.File)
	}

	stats, err := rewrite.Run(cmd.Context(), rewrite.Config{
		IncludeRoots:     cfg.IncludeRoots,
		SourceDir:        cfg.Source,
		OutputDir:        cfg.Output,
		HeaderExtensions: cfg.HeaderExtensions,
		Policy:           policy,
		DryRun:           cfg.DryRun,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	logger.Info("Summary")
	for _, line := range stats.Summary() {
		logger.Info(line)
	}
	return nil
}
