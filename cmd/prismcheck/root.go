// prismcheck cross-validates the ranking framework's statistics against
// GraphPad Prism: it exports Prism import tables from study artifacts,
// ingests Prism's exported results, and compares the two within per-class
// tolerances.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prismcheck/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "prismcheck",
	Short: "Cross-validate framework statistics against GraphPad Prism",
	Long: "prismcheck extracts per-replication metrics from a ranking study,\n" +
		"shapes them into Prism import tables, ingests Prism's exported results,\n" +
		"and verifies every statistic agrees within configured tolerances.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
