package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/textage/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch, normalize and cache the textage datasets",
	Long: `Processes each dataset in turn. Fresh cache artifacts are decoded in place;
stale or missing ones are downloaded, extracted, validated and written.

A failing dataset does not stop the others. The command exits non-zero if
any dataset failed.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	addSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("force", false, "refetch even when the cache is fresh")
	cmd.Flags().StringSlice("dataset", nil, "dataset to process (repeatable; default all)")
}

func runSync(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	names, _ := cmd.Flags().GetStringSlice("dataset")

	a, err := loadApp()
	if err != nil {
		return err
	}
	table, err := a.table.Select(names)
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalContext(a)
	defer cancel()

	r, closeEvents, err := a.runner(force)
	if err != nil {
		return err
	}
	defer closeEvents()

	rep := r.Run(ctx, table)
	ui.New(cmd.OutOrStdout()).RunSummary(rep)
	if n := rep.Failed(); n > 0 {
		return fmt.Errorf("%d of %d datasets failed", n, len(rep.Outcomes))
	}
	return nil
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(a *app) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			a.logger.Info("shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
