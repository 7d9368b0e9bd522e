package cli

import (
	"errors"
	"os"

	rmd2ptx "github.com/statpress/go-rmd2ptx"
	"github.com/statpress/go-rmd2ptx/internal/config"
)

// Exit codes for the migration binaries.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // all documents processed
	ExitGeneral  = 1 // general/unexpected error, including a batch with failures
	ExitUsage    = 2 // invalid flags, arguments, or manifest
	ExitIO       = 3 // file not found, permission denied
	ExitDocument = 4 // document rejected: conversion, validation, or alignment
)

// ExitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Document errors (exit 4)
	if errors.Is(err, rmd2ptx.ErrEmptySource) ||
		errors.Is(err, rmd2ptx.ErrBadFrontMatter) ||
		errors.Is(err, rmd2ptx.ErrUnclosedFence) ||
		errors.Is(err, rmd2ptx.ErrBadChunkHeader) ||
		errors.Is(err, rmd2ptx.ErrUnsupportedConstruct) ||
		errors.Is(err, rmd2ptx.ErrMissingChapterID) ||
		errors.Is(err, rmd2ptx.ErrInvalidOutput) ||
		errors.Is(err, rmd2ptx.ErrEmptyRendered) ||
		errors.Is(err, rmd2ptx.ErrEmptyMarkup) ||
		errors.Is(err, rmd2ptx.ErrInvalidMarkup) ||
		errors.Is(err, rmd2ptx.ErrAlignment) ||
		errors.Is(err, rmd2ptx.ErrSpliceInternal) {
		return ExitDocument
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadSource) ||
		errors.Is(err, ErrReadRendered) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/manifest errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrChapterIncomplete) ||
		errors.Is(err, config.ErrDuplicateChapter) ||
		errors.Is(err, config.ErrUnknownChapter) {
		return ExitUsage
	}

	return ExitGeneral
}
