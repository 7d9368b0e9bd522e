package cli

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for driver operations.
var (
	ErrUsage        = errors.New("invalid usage")
	ErrNoInput      = errors.New("no input specified")
	ErrReadSource   = errors.New("failed to read source file")
	ErrReadRendered = errors.New("failed to read rendered page")
	ErrWriteOutput  = errors.New("failed to write output file")
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Result holds the outcome of processing a single document.
type Result struct {
	InputPath  string
	OutputPath string
	Detail     string // extra line shown under verbose, such as splice stats
	Err        error
	Duration   time.Duration
}

// Summary holds the count of succeeded and failed documents.
type Summary struct {
	Succeeded int
	Failed    int
}

// CountResults tallies succeeded and failed documents.
func CountResults(results []Result) Summary {
	var summary Summary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// PrintResults outputs per-document results using the environment writers
// and returns the number of failures.
func PrintResults(results []Result, quiet, verbose bool, env *Environment) int {
	summary := CountResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
			if r.Detail != "" {
				fmt.Fprintf(env.Stdout, "  %s\n", r.Detail)
			}
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
