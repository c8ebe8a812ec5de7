// Package main is the cfdpreceiver CLI entrypoint, grounded on the
// teacher's cobra/pflag-based command wiring (cmd/touch, cmd/version):
// a root command with persistent flags, subcommands added via
// rootCmd.AddCommand, and Execute() as the single fallible entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags, the way the teacher's
// cmd/version reports fs.Version.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cfdpreceiver",
	Short: "Run a CFDP file-delivery receiver engine",
	Long: `cfdpreceiver runs the receive-side half of the CCSDS File
Delivery Protocol: it accepts Metadata, File Data, and EOF PDUs on one or
more configured channels, reassembles files, and drives Class 1 and
Class 2 transactions to completion.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/cfdpreceiver/config.yaml", "path to the channel configuration file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command, exiting the process non-zero on error,
// matching the teacher's cmd.Main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
