package main

import (
	"fmt"

	"github.com/statpress/go-rmd2ptx/internal/cli"
	"github.com/statpress/go-rmd2ptx/internal/config"
	"github.com/statpress/go-rmd2ptx/internal/fileutil"
)

// DefaultManifestName is where init writes the starter manifest.
const DefaultManifestName = "book.yaml"

// runInit writes the compiled-in manifest as a starter file for editing.
// An existing file is never overwritten.
func runInit(args []string, env *cli.Environment) error {
	path := DefaultManifestName
	switch len(args) {
	case 0:
	case 1:
		path = args[0]
	default:
		return fmt.Errorf("%w: expected at most one path", cli.ErrUsage)
	}

	if fileutil.FileExists(path) {
		return fmt.Errorf("%w: %s already exists", cli.ErrWriteOutput, path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("%w: %v", cli.ErrWriteOutput, err)
	}

	fmt.Fprintf(env.Stdout, "Created %s\n", path)
	return nil
}
