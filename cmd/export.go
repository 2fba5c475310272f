package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/textage/internal/catalog"
	"github.com/papapumpkin/textage/internal/decode"
	"github.com/papapumpkin/textage/internal/pipeline"
	"github.com/papapumpkin/textage/internal/rules"
	"github.com/papapumpkin/textage/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Sync the built-in datasets and write a SQLite song catalog",
	Long: `Runs the pipeline for actbl, scrlist and titletbl, joins them into one
record per song and replaces the contents of the catalog database.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("db", "", "catalog database path (default textage.db)")
	exportCmd.Flags().Bool("force", false, "refetch even when the cache is fresh")
	_ = viper.BindPFlag("db_path", exportCmd.Flags().Lookup("db"))
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")

	a, err := loadApp()
	if err != nil {
		return err
	}
	table, err := a.table.Select([]string{rules.Difficulties, rules.Versions, rules.Titles})
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
	if err := rep.Err(); err != nil {
		return fmt.Errorf("export: datasets incomplete: %w", err)
	}

	songs := catalog.Build(result(rep, rules.Difficulties).Difficulties,
		result(rep, rules.Versions).Versions,
		result(rep, rules.Titles).Titles)

	store, err := catalog.Open(ctx, a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Replace(ctx, songs); err != nil {
		return err
	}

	a.logger.Info("catalog written", "path", a.cfg.DBPath, "songs", len(songs))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d songs to %s\n", len(songs), a.cfg.DBPath)
	return nil
}

func result(rep *pipeline.Report, dataset string) decode.Result {
	o, _ := rep.Outcome(dataset)
	return o.Result
}
