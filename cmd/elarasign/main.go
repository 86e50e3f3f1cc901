// Command elarasign is the CLI front end for the content-provenance
// engine: sign, verify, inspect, forensic-unlock, and export operate on
// PNG/JPEG files from the local filesystem.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
)

const version = "2.0.0"

var (
	logLevel    string
	versionFlag bool
	rootCmd     *cobra.Command
	cliLogger   hclog.Logger
)

func init() {
	color.Output = colorable.NewColorableStdout()

	rootCmd = &cobra.Command{
		Use:   "elarasign",
		Short: "Content provenance signing and verification",
		Long:  "elarasign embeds and verifies tamper-evident, multi-layer provenance signatures in raster images.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cliLogger = hclog.New(&hclog.LoggerOptions{
				Name:  "elarasign",
				Level: hclog.LevelFromString(logLevel),
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(forensicUnlockCmd())
	rootCmd.AddCommand(exportCmd())
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("elarasign %s\n", version)
		return
	}

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
