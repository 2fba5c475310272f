package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "textage",
	Short: "Sync textage.cc score tables into local JSON",
	Long: `textage downloads the JavaScript data tables published on textage.cc,
extracts their literal blocks, normalizes them into JSON and caches the
result on disk. Artifacts younger than max_cache_age are reused.

Running textage without a subcommand is the same as "textage sync".`,
	SilenceUsage: true,
	RunE:         runSync,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .textage.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("cache-dir", "", "directory for cached artifacts (default ./textage-data)")
	rootCmd.PersistentFlags().String("rules", "", "TOML file with extra or replacement dataset rules")
	_ = viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	_ = viper.BindPFlag("rules_file", rootCmd.PersistentFlags().Lookup("rules"))

	addSyncFlags(rootCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".textage")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("TEXTAGE")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()

	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		viper.Set("log_level", "debug")
	}
}
