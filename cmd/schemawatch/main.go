package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "schemawatch",
	Short: "Watch a database schema and report structural changes",
	Long: `SchemaWatch captures canonical snapshots of a database's tables and
columns, hashes them for cheap change detection, and computes typed diffs
(added/removed/renamed tables and columns, type changes) when the schema
moves. Supports PostgreSQL, MySQL, and SQLite.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./schemawatch.yaml or $HOME/.config/schemawatch/schemawatch.yaml)")
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "schemawatch"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("schemawatch")
	}

	viper.SetEnvPrefix("schemawatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("monitor.interval", "60s")
	viper.SetDefault("monitor.detect_renames", true)
	viper.SetDefault("output.format", "text")

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; anything else is worth reporting.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "warning: failed to read config: %v\n", err)
		}
	}
}

// databaseURL resolves the connection URL from the flag or config file.
func databaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if url := viper.GetString("database.url"); url != "" {
		return url, nil
	}
	return "", fmt.Errorf("no database URL: pass --db-url or set database.url in the config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
