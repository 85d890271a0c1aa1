package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LegacyCodeHQ/includefix/internal/config"
	"github.com/LegacyCodeHQ/includefix/internal/logging"
	"github.com/LegacyCodeHQ/includefix/rewrite"
	"github.com/spf13/cobra"
)

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rewrite includes again whenever a source or header file changes",
		Long: `Run the include rewrite once, then watch the source directory and every
include directory for changes to C/C++ files and run it again after each burst
of changes. The output directory is never watched.

Examples:
  includefix watch -s ./src -i ./include -o ./fixed`,
		RunE: runWatch,
	}

	config.AddPipelineFlags(cmd.Flags())
	cmd.Flags().StringP(config.KeyOutput, "o", "", "Output directory")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if missing := cfg.Missing(config.KeySource, config.KeyOutput); len(missing) > 0 {
		return fmt.Errorf("missing required options: %v", missing)
	}
	policy, err := rewrite.ParsePolicy(cfg.TieBreak)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)

	r := &runner{
		cfg: rewrite.Config{
			IncludeRoots:     cfg.IncludeRoots,
			SourceDir:        cfg.Source,
			OutputDir:        cfg.Output,
			HeaderExtensions: cfg.HeaderExtensions,
			Policy:           policy,
			Logger:           logger,
		},
		logger: logger,
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := r.run(ctx); err != nil {
		return fmt.Errorf("initial rewrite failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", cfg.Source)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl+C to stop\n")

	filter := changeFilter{
		outputDir:        cfg.Output,
		headerExtensions: cfg.HeaderExtensions,
	}
	dirs := append([]string{cfg.Source}, cfg.IncludeRoots...)
	return watchAndRebuild(ctx, dirs, filter, func() {
		if err := r.run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("rewrite failed", "err", err)
		}
	}, logger)
}
