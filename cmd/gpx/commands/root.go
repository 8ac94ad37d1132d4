// Package commands provides the CLI commands for the go-path-explain tool.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-path-explain/internal/config"
	"github.com/l3aro/go-path-explain/internal/log"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gpx",
	Short: "go-path-explain - Explain analyzer error paths",
	Long: `go-path-explain turns the error trace of a static analyzer report into a
short list of notes: where the bad value came from, which branches were
assumed and why the defect happens.

Commands:
  explain     Explain trace fixtures
  parse       Dump the syntax shape of a C snippet
  init        Create a configuration file interactively

Use "gpx [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file path (default: project then global config)")
	RootCmd.PersistentFlags().Bool("verbose", false, "Verbose logging")
}

// loadConfig reads the config named by --config, or the project and global
// config files, and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
	}
	return cfg, nil
}

// newLogger returns the stderr logger for cfg.
func newLogger(cfg *config.Config) log.Logger {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	return log.New(log.LoggerConfig{Level: level, Output: os.Stderr})
}
