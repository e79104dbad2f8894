package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/roasbeef/wiki-mcp/internal/build"
	"github.com/roasbeef/wiki-mcp/internal/config"
	"github.com/spf13/cobra"
)

const (
	// Subsystem tags of the loggers handed to each component.
	subsystemWiki = "WIKI"
	subsystemMCP  = "MCPS"
	subsystemCmd  = "WMCP"
)

var (
	// configFile is the optional YAML configuration file.
	configFile string

	// envFile is the optional dotenv file.
	envFile string

	// debugLevel overrides the configured log level.
	debugLevel string

	// logDir overrides the configured log directory.
	logDir string

	// cfg is the loaded configuration, set before any subcommand runs.
	cfg *config.Config

	// logMgr owns the process log destinations.
	logMgr *build.LogManager
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "wiki-mcp",
	Short: "Wikipedia summaries for MCP hosts",
	Long: `wiki-mcp is an MCP server exposing two tools: fetch_wikipedia_summary,
which returns a short summary and related links for a topic, and
fetch_instructions, which returns guidance for presenting those summaries.

Run "wiki-mcp serve" to start the server, or use the summary and
instructions commands to try the tools from a terminal.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configFile, "config", "",
		"Path to a YAML configuration file",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile, "envfile", config.DefaultEnvFile,
		"Path to a dotenv file, ignored if it does not exist",
	)
	rootCmd.PersistentFlags().StringVar(
		&debugLevel, "debuglevel", "",
		"Log level: trace, debug, info, warn, error, critical, off",
	)
	rootCmd.PersistentFlags().StringVar(
		&logDir, "logdir", "",
		"Directory for rotated log files (default: no file logging)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(instructionsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and initializes logging. Logs always go to
// stderr since stdout carries the stdio transport and command output.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configFile, envFile)
	if err != nil {
		return err
	}

	if debugLevel != "" {
		cfg.Log.Level = debugLevel
	}
	if logDir != "" {
		cfg.Log.Dir = logDir
	}

	logMgr, err = build.NewLogManager(os.Stderr, cfg.LogRotatorConfig())
	if err != nil {
		return fmt.Errorf("unable to set up logging: %w", err)
	}

	return logMgr.SetLevel(cfg.Log.Level)
}

// teardown flushes the log file.
func teardown(_ *cobra.Command, _ []string) error {
	if logMgr == nil {
		return nil
	}

	return logMgr.Close()
}

// logger returns the logger of a subsystem.
func logger(subsystem string) *slog.Logger {
	return logMgr.Logger(subsystem)
}
