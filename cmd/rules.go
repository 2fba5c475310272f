package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/textage/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective dataset rule table as TOML",
	Long: `Prints the built-in datasets merged with rules_file, in the same TOML
format rules_file accepts. The output can be edited and passed back with
--rules.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		return rules.Encode(cmd.OutOrStdout(), a.table)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
