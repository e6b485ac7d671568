package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// It provides a consistent fatal-exit pattern for CLI entry points.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(exitCodeFailure)
}

// ExitUsage reports a usage error and exits with code 2, matching the flag
// package's convention for bad arguments.
func ExitUsage(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(exitCodeUsage)
}

const (
	exitCodeFailure = 1
	exitCodeUsage   = 2
)
