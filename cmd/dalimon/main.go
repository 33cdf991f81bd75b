// Dalimon is a passive analyzer for DALI lighting-control buses.
//
// It attaches to a USB or serial bridge device, captures raw bus
// traffic, and prints each captured frame as a structured,
// human-readable command with timing information.
//
// Usage:
//
//	dalimon [flags]
//	dalimon send <byte> [byte] [byte]
//	dalimon devices
//
// Running without a subcommand starts capturing. See 'dalimon --help'
// for flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxbus/dalimon/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dalimon",
	Short: "DALI bus analyzer",
	Long: `A passive analyzer for DALI lighting-control buses.

Attaches to a USB or serial bridge, captures raw bus traffic and
prints every frame as a decoded command with timing information.

Output columns:
  wall-clock time (with --absolute)
  relative timestamp in seconds
  delta to the previous frame
  raw frame bits in hex
  decoded command`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE:         runCapture,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dalimon %s\n", version.Full())
	},
}
