package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/infantry-community/internal/app"
	"github.com/riskibarqy/infantry-community/internal/config"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

type rootOptions struct {
	jsonOutput bool
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Infantry Online community maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newRecalculateEloCmd(opts),
		newSeasonTransitionCmd(opts),
		newFixOvDSidesCmd(opts),
		newImportStatsCmd(opts),
	)
	return root
}

// withApp loads the API configuration and wires the same services the API
// uses, so commands operate on the configured storage.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.UsesDatabase() {
		printWarn("DATABASE_URL is empty; running against in-memory storage, nothing will persist")
	}
	// Admin runs do the work inline instead of handing it to the job queue.
	cfg.QStashEnabled = false

	level := logging.LevelWarn
	if opts.verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewConsole(level)
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(cmd.Context(), a)
}
