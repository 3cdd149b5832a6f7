// Package main implements the yangcore command-line tool: a thin driver
// over the schema/data packages exposing "validate", "info", and "node"
// subcommands.
//
// Built on github.com/spf13/cobra + github.com/spf13/viper: a persistent
// --config flag read by PersistentPreRunE, viper bound to the command's
// flags plus the process environment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yangcore/yangcore/diag"
)

func main() {
	Execute()
}

// Execute builds and runs the root command.
func Execute() {
	rootCmd := &cobra.Command{
		Use: "yangcore",
		Short: "yangcore compiles and resolves references across a set of YANG modules",
	}

	cfgFile := rootCmd.PersistentFlags().String("config", "", "path to a config file (yaml/json/toml)")
	searchPaths := rootCmd.PersistentFlags().StringSlice("path", nil, "search directory for YANG modules; may be repeated")
	logLevel := rootCmd.PersistentFlags().String("log-level", "error", "log level: error|warn|info|debug")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *cfgFile != "" {
			viper.SetConfigFile(*cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("yangcore: reading config: %w", err)
			}
		}
		viper.BindPFlags(cmd.Flags())
		viper.SetEnvPrefix("YANGCORE")
		viper.AutomaticEnv()
		return nil
	}

	rootCmd.AddCommand(newValidateCmd(searchPaths, logLevel))
	rootCmd.AddCommand(newInfoCmd(searchPaths, logLevel))
	rootCmd.AddCommand(newNodeCmd(searchPaths, logLevel))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) diag.Level {
	switch s {
	case "debug":
		return diag.LevelDebug
	case "info":
		return diag.LevelInfo
	case "warn":
		return diag.LevelWarn
	default:
		return diag.LevelError
	}
}
