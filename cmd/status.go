package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/textage/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show freshness, age and path of each cache artifact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		rows := make([]ui.StatusRow, 0, len(a.table))
		for _, spec := range a.table {
			entry, err := a.store.Stat(spec.CacheName)
			if err != nil {
				return err
			}
			rows = append(rows, ui.StatusRow{Dataset: spec.Name, Entry: entry})
		}
		ui.New(cmd.OutOrStdout()).Status(rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
