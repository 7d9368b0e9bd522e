package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/statpress/go-rmd2ptx/internal/cli"
	"github.com/statpress/go-rmd2ptx/internal/hints"
	"github.com/statpress/go-rmd2ptx/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := cli.DefaultEnv()

	command, rest := splitCommand(os.Args[1:])
	switch command {
	case "version":
		fmt.Fprintf(env.Stdout, "ptxsplice %s\n", Version)
		return
	case "help":
		runHelp(rest, env)
		return
	}

	flags, positional, err := parseSpliceFlags(rest)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(cli.ExitUsage)
	}

	logging.Init(
		logging.LevelFor(flags.common.quiet, flags.common.verbose),
		logging.FormatFor(flags.common.logJSON),
		os.Stderr,
	)

	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if flags.common.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runSplice(ctx, positional, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, hints.WithHint(err))
		os.Exit(cli.ExitCodeFor(err))
	}
}

// splitCommand separates a leading subcommand from the remaining arguments.
// No recognized subcommand means splice, so plain pair invocations work.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "splice", nil
	}
	switch args[0] {
	case "splice", "version", "help":
		return args[0], args[1:]
	}
	return "splice", args
}
