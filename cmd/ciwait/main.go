// Package main is the entry point for the ciwait CLI.
//
// ciwait watches the CI checks of a branch, pull request or commit
// reference until they finish, with adaptive polling and a progress
// estimate derived from past run durations.
//
// Usage:
//
//	ciwait                  # watch the current branch
//	ciwait 128              # watch PR number 128
//	ciwait owner:branch     # watch a fork branch
//	ciwait clear-history    # forget stored run durations
//	ciwait selftest         # exercise the notification paths
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitCodeError carries the final status query's exit code out of RunE
// without cobra treating it as a diagnostic to print.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string { return "" }

// rootCmd runs a watch session. Subcommands cover the maintenance paths.
var rootCmd = &cobra.Command{
	Use:   "ciwait [target]",
	Short: "Wait for CI checks to finish",
	Long: `ciwait polls the CI status of one target until every check finishes,
fails, or a timeout expires.

The target may be a PR number, a PR URL, or an owner:branch reference;
with no argument the current branch is watched (qualified with the fork
owner when an upstream remote exists).

Polling adapts to history: ciwait remembers how long past runs took
(in git config, under the ci-wait.* prefix) and polls faster as a run
approaches its expected duration, slower in steady state. The same
history drives the progress bar.

The exit status reflects the final status query: 0 when all checks
passed, non-zero otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
	// errors are printed in Execute so a pass-through exit code can
	// leave quietly
	SilenceErrors: true,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ec *exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a text logger on stderr so progress lines on stdout
// stay clean. Verbose mode opens up the debug level.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to an optional YAML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this ciwait binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ciwait %s\n", version)
		cmd.Printf("  commit: %s\n", commit)
		cmd.Printf("  built:  %s\n", date)
	},
}
