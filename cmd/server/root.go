package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "coachapi",
	Short: "Coaching resource API",
	Long: `coachapi serves coaching resources over HTTP. Every API and upload request
gets correlation and request IDs, response timing, CORS checks and schema
validation; resources flagged as sensitive also require a reason for access,
which is written to an audit trail.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Running the binary without a subcommand starts the server.
	RunE: runServe,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults to $CONFIG_FILE)")
}
