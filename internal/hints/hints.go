// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"context"
	"errors"

	rmd2ptx "github.com/statpress/go-rmd2ptx"
	"github.com/statpress/go-rmd2ptx/internal/config"
)

// WithHint returns the error message with an actionable hint appended when
// one exists for the failure. The binaries use this for their final error line.
func WithHint(err error) string {
	if err == nil {
		return ""
	}
	return err.Error() + For(err)
}

// For returns the hint matching an error, or "" when none applies.
func For(err error) string {
	switch {
	case errors.Is(err, rmd2ptx.ErrUnclosedFence):
		return ForUnclosedFence()
	case errors.Is(err, rmd2ptx.ErrBadChunkHeader):
		return ForBadChunkHeader()
	case errors.Is(err, rmd2ptx.ErrUnsupportedConstruct):
		return ForUnsupportedConstruct()
	case errors.Is(err, rmd2ptx.ErrMissingChapterID):
		return ForMissingChapterID()
	case errors.Is(err, rmd2ptx.ErrAlignment):
		return ForAlignment()
	case errors.Is(err, config.ErrConfigNotFound):
		return ForConfigNotFound()
	case errors.Is(err, context.DeadlineExceeded):
		return ForTimeout()
	default:
		return ""
	}
}

// ForUnclosedFence returns the hint for an unterminated code fence.
func ForUnclosedFence() string {
	return format("every ``` fence needs a matching closing ``` line")
}

// ForBadChunkHeader returns the hint for a malformed chunk header.
func ForBadChunkHeader() string {
	return format("chunk options are comma-separated name=value pairs, e.g. ```{r label, echo=FALSE}")
}

// ForUnsupportedConstruct returns the hint for markup the converter rejects.
func ForUnsupportedConstruct() string {
	return format("rewrite or remove the construct at the reported position; the converter fails rather than guessing")
}

// ForMissingChapterID returns the hint for a chapter whose id cannot be
// determined from any source.
func ForMissingChapterID() string {
	return format("add {#some-id} to the chapter heading, set id: in front matter, or pass --id")
}

// ForAlignment returns the hint for output runs that do not match the
// document's code elements.
func ForAlignment() string {
	return format("re-render the bookdown page so its chunk code matches the document's program elements")
}

// ForConfigNotFound returns the hint for a missing manifest file.
func ForConfigNotFound() string {
	return format("use --config /path/to/manifest.yaml or create one under ~/.config/go-rmd2ptx/")
}

// ForTimeout returns a hint about increasing the timeout for slow conversions.
func ForTimeout() string {
	return format("for large chapters, use --timeout flag")
}

// ForOutputDirectory returns the hint for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
