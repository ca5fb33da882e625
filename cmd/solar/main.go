// solar hosts an animated solar system scene that remote clients populate
// with short text commands over UDP.
//
// Usage:
//
//	solar serve                  - Run the scene host
//	solar client <host> <port>   - Send command lines to a host
//	solar exec <script>          - Apply a script to a fresh scene offline
//	solar scenes                 - List scene presets
//	solar history                - Show journaled commands and sessions
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.solar/config.yaml, ./configs/solar.yaml)
//	--db <path>         - Journal database (default: ~/.solar/journal.db)
//	--log-level <lvl>   - debug, info, warn, error
//	--log-file <path>   - Write rotated logs to a file instead of stderr
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/solar-scene/internal/config"
	"github.com/vovakirdan/solar-scene/internal/logging"

	// Import presets to register them
	_ "github.com/vovakirdan/solar-scene/internal/scenes"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "solar",
	Short: "Solar scene host and console client",
	Long: `solar runs an animated solar system scene graph and accepts text
commands from remote console clients that create points and objects
and move objects between points.

Available commands:
  serve    - Run the scene host
  client   - Send command lines to a host
  exec     - Apply a script to a fresh scene offline
  scenes   - List scene presets
  history  - Show journaled commands and sessions

Examples:
  solar serve --ssh :23234
  solar client 127.0.0.1 32000
  solar exec demo.txt
  solar history --limit 50`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.solar/journal.db", "Path to journal database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to a rotated file")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(scenesCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig loads the config file and applies global flags that were set
// explicitly on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Storage.Path = flagDBPath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = flagLogLevel
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = flagLogFile
	}
	return cfg, nil
}

// mustSetup loads config and the logger, exiting on failure.
func mustSetup(cmd *cobra.Command) (config.Config, *log.Logger, io.Closer) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, closer
}
