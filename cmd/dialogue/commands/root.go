// Package commands provides the CLI commands for dialogue.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information set at build time
	Version   = "1.0.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "dialogue",
	Short: "Dialogue - desktop client for the conversational gateway",
	Long: `Dialogue relays prompts to the remote conversational gateway over a
persistent WebSocket and caches conversation history locally.

Run 'dialogue serve' to start the local facade server the presentation
layer talks to.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr instead of the log file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("dialogue %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(updateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
