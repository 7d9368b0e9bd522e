package main

import (
	"fmt"
	"io"

	"github.com/statpress/go-rmd2ptx/internal/cli"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: rmd2ptx [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert RMarkdown chapters to PreTeXt (default)")
	fmt.Fprintln(w, "  init       Write a starter manifest for editing")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'rmd2ptx help convert' for details on the convert command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: rmd2ptx [convert] [<chapter.Rmd> <chapter.ptx>] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert RMarkdown chapters to PreTeXt documents.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  chapter.Rmd    RMarkdown source (omit both to convert every manifest chapter)")
	fmt.Fprintln(w, "  chapter.ptx    PreTeXt output path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -c, --config <name>        Manifest file name or path")
	fmt.Fprintln(w, "      --chapter <id>         Convert only this manifest chapter")
	fmt.Fprintln(w, "  -w, --workers <n>          Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>        Per-document timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Chapter identity (pair mode):")
	fmt.Fprintln(w, "      --id <s>               Chapter xml:id (\"\" = resolve from source)")
	fmt.Fprintln(w, "      --title <s>            Chapter title (\"\" = resolve from source)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conventions:")
	fmt.Fprintln(w, "      --language <s>         Program language attribute (default r)")
	fmt.Fprintln(w, "      --figure-prefix <s>    Figure xml:id prefix (default fig-)")
	fmt.Fprintln(w, "      --table-prefix <s>     Table xref prefix (default table-)")
	fmt.Fprintln(w, "      --image-dir <s>        Directory replacing ./img/ in figure sources")
	fmt.Fprintln(w, "      --generated-dir <s>    Directory of knitr-generated figures")
	fmt.Fprintln(w, "      --image-width <s>      Width attribute on figure images (default 80%)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Show per-document detail and timing")
	fmt.Fprintln(w, "      --log-json             Log diagnostics as JSON lines")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0  Success")
	fmt.Fprintln(w, "  1  General error or failed batch")
	fmt.Fprintln(w, "  2  Usage or manifest error")
	fmt.Fprintln(w, "  3  I/O error")
	fmt.Fprintln(w, "  4  Document rejected")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  rmd2ptx                                Convert every manifest chapter")
	fmt.Fprintln(w, "  rmd2ptx 02.03-introR.Rmd ch3.ptx       Convert a single pair")
	fmt.Fprintln(w, "  rmd2ptx -c book.yaml --chapter anova   Convert one manifest chapter")
	fmt.Fprintln(w, "  rmd2ptx --language python nb.Rmd nb.ptx")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *cli.Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "init":
		fmt.Fprintln(env.Stdout, "Usage: rmd2ptx init [path]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Write the compiled-in chapter manifest as a starter file")
		fmt.Fprintln(env.Stdout, "(default book.yaml). Existing files are never overwritten.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: rmd2ptx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: rmd2ptx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
