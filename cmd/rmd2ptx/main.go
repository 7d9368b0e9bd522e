package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	rmd2ptx "github.com/statpress/go-rmd2ptx"
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
		fmt.Fprintf(env.Stdout, "rmd2ptx %s\n", Version)
		return
	case "help":
		runHelp(rest, env)
		return
	case "init":
		if err := runInit(rest, env); err != nil {
			fmt.Fprintln(env.Stderr, hints.WithHint(err))
			os.Exit(cli.ExitCodeFor(err))
		}
		return
	}

	// Parse flags first to get workers count and verbose
	flags, positional, err := parseConvertFlags(rest)
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

	poolSize := rmd2ptx.ResolvePoolSize(flags.workers)
	if flags.common.verbose {
		fmt.Fprintf(os.Stderr, "Pool size: %d\n", poolSize)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, poolSize, env); err != nil {
		fmt.Fprintln(env.Stderr, hints.WithHint(err))
		os.Exit(cli.ExitCodeFor(err))
	}
}

// splitCommand separates a leading subcommand from the remaining arguments.
// No recognized subcommand means convert, so plain pair invocations work.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "convert", nil
	}
	switch args[0] {
	case "convert", "init", "version", "help":
		return args[0], args[1:]
	}
	return "convert", args
}
