// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the peaks-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the peaks-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "peaks-engine",
	Short: "Store single-crystal peaks workspaces and combine them",
	Long: `peaks-engine keeps peaks workspaces in a named workspace store and runs
the CombinePeaksWorkspaces algorithm on them.

Import peak files with import, merge two stored workspaces with combine,
and inspect or export the store with workspace. Settings come from
peaks-engine.yaml, PEAKS_ENGINE_* environment variables, and flags.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./peaks-engine.yaml or ~/.config/peaks-engine/peaks-engine.yaml)")
	rootCmd.PersistentFlags().String("data-dir", defaultDataDir, "base directory for the workspace store (contains index/, export/)")
	rootCmd.PersistentFlags().String("backend", string(defaultBackend), "workspace store backend: sqlite or memory")
	rootCmd.PersistentFlags().String("instruments-dir", defaultInstrumentsDir, "directory of instrument definitions referenced by name")
	rootCmd.PersistentFlags().String("log-level", defaultLogLevel, "algorithm log level: debug, info, warn, error")

	bindFlag("store.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	bindFlag("store.backend", rootCmd.PersistentFlags().Lookup("backend"))
	bindFlag("instruments_dir", rootCmd.PersistentFlags().Lookup("instruments-dir"))
	bindFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("peaks-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "peaks-engine"))
		}
	}

	viper.SetEnvPrefix("PEAKS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
