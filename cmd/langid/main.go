// Package main implements the langid CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"langid/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "langid",
	Short:         "Identify the natural language of text",
	Long:          `langid detects the language of text with n-gram frequency profiles`,
	SilenceUsage: true,
}

// main executes the root command. Any command error exits with status 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version.Engine

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("config", "", "path to langid.toml (default: search upwards from the working directory)")
	pf.String("model", "", "model directory, model.toml or compiled .lidm file (default: embedded model)")

	pf.String("trace", "", "write trace events to file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring buffer")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
