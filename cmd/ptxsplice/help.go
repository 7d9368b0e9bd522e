package main

import (
	"fmt"
	"io"

	"github.com/statpress/go-rmd2ptx/internal/cli"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ptxsplice [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  splice     Insert captured console output into PreTeXt chapters (default)")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'ptxsplice help splice' for details on the splice command.")
}

// printSpliceUsage prints usage for the splice command.
func printSpliceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ptxsplice [splice] [<rendered.html> <chapter.ptx>] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Insert console output from rendered bookdown pages into PreTeXt chapters.")
	fmt.Fprintln(w, "Each executed code block on the page becomes a console element after the")
	fmt.Fprintln(w, "program element carrying the same code.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  rendered.html  Built bookdown page (omit both to splice every manifest chapter)")
	fmt.Fprintln(w, "  chapter.ptx    PreTeXt document, rewritten in place unless --output is given")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -c, --config <name>        Manifest file name or path")
	fmt.Fprintln(w, "      --chapter <id>         Splice only this manifest chapter")
	fmt.Fprintln(w, "  -o, --output <path>        Write result here instead of in place (pair mode)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conventions:")
	fmt.Fprintln(w, "      --marker <s>           Console output line prefix (default ##)")
	fmt.Fprintln(w, "      --language <s>         Program language attribute targeted (default r)")
	fmt.Fprintln(w, "      --strict               Require run count == program count")
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
	fmt.Fprintln(w, "  ptxsplice                              Splice every manifest chapter with a page")
	fmt.Fprintln(w, "  ptxsplice regression.html ch12.ptx     Splice one pair in place")
	fmt.Fprintln(w, "  ptxsplice -c book.yaml --chapter anova Splice one manifest chapter")
	fmt.Fprintln(w, "  ptxsplice --strict bayes.html ch17.ptx -o ch17-spliced.ptx")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *cli.Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "splice":
		printSpliceUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: ptxsplice version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: ptxsplice help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
