// Package cmd wires the snowfs cobra command tree: a bare root command plus
// a NewRepoCommand helper that resolves the repository before invoking a
// handler, so each subcommand only has to implement its own behavior.
package cmd

import (
	"fmt"
	"os"
)

var rootCmd = newRootCommand()

// Execute runs the command tree, mapping errors to a process exit code:
// 0 success, 1 user error, 2 unexpected internal error.
func Execute() {
	if os.Getenv("SUPPRESS_BANNER") != "true" {
		fmt.Println("snowfs - content-addressed version control for large binary assets")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
