package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	logJSON bool
}

// spliceFlags holds all flags for the splice command.
type spliceFlags struct {
	common   commonFlags
	chapter  string
	output   string
	marker   string
	language string
	strict   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "manifest file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-document detail")
	fs.BoolVar(&f.logJSON, "log-json", false, "log diagnostics as JSON lines")
}

// parseSpliceFlags parses splice command flags and returns positional args.
func parseSpliceFlags(args []string) (*spliceFlags, []string, error) {
	fs := flag.NewFlagSet("splice", flag.ContinueOnError)
	f := &spliceFlags{}

	fs.StringVar(&f.chapter, "chapter", "", "splice only this manifest chapter id")
	fs.StringVarP(&f.output, "output", "o", "", "output path (pair mode, \"\" = rewrite in place)")
	fs.StringVar(&f.marker, "marker", "", "console output line prefix (default ##)")
	fs.StringVar(&f.language, "language", "", "program language attribute targeted (default r)")
	fs.BoolVar(&f.strict, "strict", false, "require run count == program count")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printSpliceUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
