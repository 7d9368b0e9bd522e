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

// metaFlags holds chapter identity flags, used in pair mode.
type metaFlags struct {
	id    string
	title string
}

// conventionFlags holds converter convention overrides.
type conventionFlags struct {
	language     string
	figurePrefix string
	tablePrefix  string
	imageDir     string
	generatedDir string
	imageWidth   string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common      commonFlags
	meta        metaFlags
	conventions conventionFlags
	chapter     string
	workers     int
	timeout     string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "manifest file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-document detail")
	fs.BoolVar(&f.logJSON, "log-json", false, "log diagnostics as JSON lines")
}

// addMetaFlags adds chapter identity flags to a FlagSet.
func addMetaFlags(fs *flag.FlagSet, f *metaFlags) {
	fs.StringVar(&f.id, "id", "", "chapter xml:id (\"\" = resolve from source)")
	fs.StringVar(&f.title, "title", "", "chapter title (\"\" = resolve from source)")
}

// addConventionFlags adds converter convention flags to a FlagSet.
func addConventionFlags(fs *flag.FlagSet, f *conventionFlags) {
	fs.StringVar(&f.language, "language", "", "program language attribute (default r)")
	fs.StringVar(&f.figurePrefix, "figure-prefix", "", "figure xml:id prefix (default fig-)")
	fs.StringVar(&f.tablePrefix, "table-prefix", "", "table xref prefix (default table-)")
	fs.StringVar(&f.imageDir, "image-dir", "", "directory replacing ./img/ in figure sources")
	fs.StringVar(&f.generatedDir, "generated-dir", "", "directory of knitr-generated figures")
	fs.StringVar(&f.imageWidth, "image-width", "", "width attribute on figure images (default 80%)")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVar(&f.chapter, "chapter", "", "convert only this manifest chapter id")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 30s, 2m)")

	addCommonFlags(fs, &f.common)
	addMetaFlags(fs, &f.meta)
	addConventionFlags(fs, &f.conventions)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
