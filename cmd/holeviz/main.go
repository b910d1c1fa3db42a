// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the holeviz CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/holeviz/internal/config"
	"github.com/pdiddy/holeviz/internal/logging"
	"github.com/pdiddy/holeviz/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded once per invocation in PersistentPreRunE.
var cfg types.Config

// rootCmd is the base command for the holeviz CLI.
var rootCmd = &cobra.Command{
	Use:   "holeviz",
	Short: "Visualize HOLE pore radius profiles and pore surfaces",
	Long: `holeviz turns output from the HOLE channel analysis program into
tables, charts and molecular graphics.

The profile and compare subcommands read HOLE text reports. The surface
subcommand drives HOLE's sph_process and qpt_conv helpers to build a colored
pore surface PDB and a PyMOL script. The store subcommand keeps parsed
profiles in a local SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Log.Level))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./holeviz.yaml or ~/.config/holeviz/holeviz.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("strict", false, "fail on the first malformed input line instead of skipping it")
	pf.String("output-dir", "", "directory for generated files (default: next to the input)")

	bindFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	bindFlag(config.KeyParseStrict, pf.Lookup("strict"))
	bindFlag(config.KeyOutputDir, pf.Lookup("output-dir"))
}

// bindFlag ties a flag to a config key so the flag, when set, overrides the
// config file and environment.
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("holeviz")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "holeviz"))
		}
	}

	viper.SetEnvPrefix("HOLEVIZ")
	viper.SetEnvKeyReplacer(envKeyReplacer)
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
