package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var showCmd = &cobra.Command{
	Use:   "show DATASET [KEY]",
	Short: "Print a dataset summary or one of its entries",
	Long: `Loads DATASET through the cache (fetching it when stale) and prints a
summary. With KEY, prints the JSON entry stored under that key instead; for
array datasets such as scrlist, KEY is an index.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	spec, ok := a.table.Lookup(args[0])
	if !ok {
		_, err := a.table.Select(args[:1])
		return err
	}

	r, closeEvents, err := a.runner(false)
	if err != nil {
		return err
	}
	defer closeEvents()

	out, err := r.RunOne(context.Background(), spec)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(args) == 1 {
		fmt.Fprintf(w, "dataset: %s\nkind:    %s\nentries: %d\nsource:  %s\npath:    %s\n",
			spec.Name, spec.Kind, out.Entries, out.Source, out.Path)
		return nil
	}

	data, err := a.store.Read(spec.CacheName)
	if err != nil {
		return err
	}
	res := gjson.GetBytes(data, gjson.Escape(args[1]))
	if !res.Exists() {
		return fmt.Errorf("show: no entry %q in %s", args[1], spec.Name)
	}
	fmt.Fprintln(w, res.Raw)
	return nil
}
