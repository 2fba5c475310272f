package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration, rule table and source settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		ok := true

		for _, spec := range a.table {
			if err := spec.Validate(); err != nil {
				fmt.Fprintf(w, "✗ dataset %s: %v\n", spec.Name, err)
				ok = false
				continue
			}
			fmt.Fprintf(w, "✓ dataset %s (%s, %d rules)\n", spec.Name, spec.Kind, len(spec.Rules))
		}

		if a.cfg.SourceDir != "" {
			if info, err := os.Stat(a.cfg.SourceDir); err != nil || !info.IsDir() {
				fmt.Fprintf(w, "✗ source_dir %s is not a directory\n", a.cfg.SourceDir)
				ok = false
			} else {
				fmt.Fprintf(w, "✓ source_dir %s\n", a.cfg.SourceDir)
			}
		} else {
			fmt.Fprintf(w, "✓ base_url %s\n", a.cfg.BaseURL)
		}

		if _, err := a.store.Stat(".probe"); err != nil {
			fmt.Fprintf(w, "✗ cache_dir: %v\n", err)
			ok = false
		} else {
			fmt.Fprintf(w, "✓ cache_dir %s\n", a.cfg.CacheDir)
		}

		if !ok {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
