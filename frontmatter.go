package rmd2ptx

import (
	"fmt"
	"strings"

	"github.com/statpress/go-rmd2ptx/internal/yamlutil"
)

// frontMatterDelimiter opens and closes a YAML front matter block.
const frontMatterDelimiter = "---"

// FrontMatter carries the document-head keys the converter reads.
// bookdown front matter holds many more (site, output, bibliography);
// unknown keys decode tolerantly and are ignored.
type FrontMatter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// SplitFrontMatter separates a leading YAML front matter block from source
// and returns the decoded keys plus the remaining body. The block must open
// with "---" on the first line and close with another "---" line. Sources
// without front matter pass through unchanged. Line endings must already be
// normalized; see NormalizeLineEndings.
func SplitFrontMatter(source string) (FrontMatter, string, error) {
	var fm FrontMatter

	first, rest, _ := strings.Cut(source, "\n")
	if strings.TrimRight(first, " \t") != frontMatterDelimiter {
		return fm, source, nil
	}

	block, body, ok := cutAfterDelimiter(rest)
	if !ok {
		return fm, source, fmt.Errorf("%w: opening --- has no closing ---", ErrBadFrontMatter)
	}
	if strings.TrimSpace(block) == "" {
		return fm, body, nil
	}
	if err := yamlutil.Unmarshal([]byte(block), &fm); err != nil {
		return fm, source, fmt.Errorf("%w: %v", ErrBadFrontMatter, err)
	}
	return fm, body, nil
}

// cutAfterDelimiter splits rest at the first line equal to the front matter
// delimiter. block is everything before that line, body everything after it.
func cutAfterDelimiter(rest string) (block, body string, ok bool) {
	for offset := 0; offset <= len(rest); {
		line := rest[offset:]
		next := len(rest) + 1
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = offset + i + 1
		}
		if strings.TrimRight(line, " \t") == frontMatterDelimiter {
			end := next
			if end > len(rest) {
				end = len(rest)
			}
			return rest[:offset], rest[end:], true
		}
		offset = next
	}
	return "", "", false
}
