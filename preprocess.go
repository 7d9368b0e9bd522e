package rmd2ptx

import (
	"fmt"
	"regexp"
	"strings"
)

// Precompiled patterns shared by the preprocessing passes.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Fenced code block delimiter (backticks or tildes)
	fenceDelimiter = regexp.MustCompile("^(```|~~~)")

	// Reference prefix word before a bookdown cross-reference. The word is
	// dropped; PreTeXt xrefs generate their own label text.
	refPrefixPattern = regexp.MustCompile(`(?:Figure|Table|Section|Chapter)\s+(\\@ref\()`)
)

// Preprocess normalizes chapter source before parsing. Order matters: fences
// are checked first so a malformed document fails with line numbers that
// match the input file, and blank line compression runs last because the
// footnote rewrite may append definition blocks.
func Preprocess(source string) (string, error) {
	content := strings.TrimPrefix(source, "\ufeff")
	content = NormalizeLineEndings(content)
	if err := CheckFences(content); err != nil {
		return "", err
	}
	content = StripReferencePrefixes(content)
	content = RewriteInlineFootnotes(content)
	content = CompressBlankLines(content)
	return content, nil
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// CheckFences verifies that every fenced code block is closed. The returned
// error names the opening line of the first unterminated fence.
func CheckFences(content string) error {
	open := 0
	for i, line := range strings.Split(content, "\n") {
		if !fenceDelimiter.MatchString(line) {
			continue
		}
		if open == 0 {
			open = i + 1
		} else {
			open = 0
		}
	}
	if open != 0 {
		return fmt.Errorf("%w: opened at line %d", ErrUnclosedFence, open)
	}
	return nil
}

// StripReferencePrefixes removes the label word in front of \@ref markers,
// so "Figure \@ref(fig:x)" becomes "\@ref(fig:x)". The word may be separated
// from the marker by a soft line break in hard-wrapped prose.
func StripReferencePrefixes(content string) string {
	return processSegmentsOutsideFences(content, func(segment string) string {
		return refPrefixPattern.ReplaceAllString(segment, "$1")
	})
}

// RewriteInlineFootnotes converts inline footnotes ^[text] into reference
// style: the marker becomes [^rmd-N] and a definition block is appended to
// the document, so both footnote forms flow through one parser. Footnote
// text may contain nested brackets and span soft line breaks.
func RewriteInlineFootnotes(content string) string {
	var defs []string
	n := 0
	rewritten := processSegmentsOutsideFences(content, func(segment string) string {
		var b strings.Builder
		for {
			i := strings.Index(segment, "^[")
			if i < 0 {
				b.WriteString(segment)
				return b.String()
			}
			text, rest, ok := cutBracketed(segment[i+2:])
			if !ok {
				b.WriteString(segment[:i+2])
				segment = segment[i+2:]
				continue
			}
			n++
			label := fmt.Sprintf("rmd-%d", n)
			b.WriteString(segment[:i])
			b.WriteString("[^" + label + "]")
			defs = append(defs, "[^"+label+"]: "+flattenFootnoteText(text))
			segment = rest
		}
	})
	if len(defs) == 0 {
		return content
	}
	return strings.TrimRight(rewritten, "\n") + "\n\n" + strings.Join(defs, "\n\n") + "\n"
}

// CompressBlankLines limits consecutive blank lines outside fenced code
// blocks to one. Blank runs inside fences belong to the author's code and
// are preserved.
func CompressBlankLines(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	inFence := false
	blanks := 0
	for _, line := range lines {
		if fenceDelimiter.MatchString(line) {
			inFence = !inFence
			blanks = 0
			result = append(result, line)
			continue
		}
		if !inFence && isBlankLine(line) {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}

// processSegmentsOutsideFences applies fn to each maximal run of lines that
// sits outside fenced code blocks. fn receives whole multi-line segments so
// patterns may span soft line breaks; fence delimiters and fenced content
// pass through untouched.
func processSegmentsOutsideFences(content string, fn func(string) string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	segment := make([]string, 0, len(lines))

	flush := func() {
		if len(segment) == 0 {
			return
		}
		transformed := fn(strings.Join(segment, "\n"))
		result = append(result, strings.Split(transformed, "\n")...)
		segment = segment[:0]
	}

	inFence := false
	for _, line := range lines {
		if fenceDelimiter.MatchString(line) {
			flush()
			inFence = !inFence
			result = append(result, line)
			continue
		}
		if inFence {
			result = append(result, line)
			continue
		}
		segment = append(segment, line)
	}
	flush()
	return strings.Join(result, "\n")
}

// cutBracketed splits s at the bracket closing an already-open "[", honoring
// nested bracket pairs inside the text.
func cutBracketed(s string) (inside, rest string, ok bool) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// flattenFootnoteText joins a possibly hard-wrapped footnote onto one line.
func flattenFootnoteText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// isBlankLine returns true if the line is empty or contains only whitespace.
func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}
