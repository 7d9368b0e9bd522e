package rmd2ptx

import "errors"

// Sentinel errors for library operations.
var (
	// Converter errors.
	ErrEmptySource          = errors.New("chapter source cannot be empty")
	ErrBadFrontMatter       = errors.New("malformed front matter")
	ErrUnclosedFence        = errors.New("unterminated code fence")
	ErrBadChunkHeader       = errors.New("malformed chunk header")
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	ErrMissingChapterID     = errors.New("chapter id could not be determined")
	ErrInvalidOutput        = errors.New("generated document failed validation")

	// Splicer errors.
	ErrEmptyRendered  = errors.New("rendered page cannot be empty")
	ErrEmptyMarkup    = errors.New("markup document cannot be empty")
	ErrInvalidMarkup  = errors.New("markup document is not well-formed")
	ErrAlignment      = errors.New("output runs do not align with code elements")
	ErrSpliceInternal = errors.New("splice produced inconsistent document")
)
