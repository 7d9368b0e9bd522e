package rmd2ptx

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/statpress/go-rmd2ptx/internal/ptxml"
)

// Run is one executed code block extracted from a rendered bookdown page:
// the source code as displayed and the console output that follows it.
// Output lines keep their marker prefixes byte-exact.
type Run struct {
	Code        string
	Output      string
	Fingerprint string
}

// SpliceStats summarizes one splice operation.
type SpliceStats struct {
	Runs      int // output runs extracted from the rendered page
	Programs  int // program elements eligible for splicing
	Spliced   int // console blocks inserted
	Skipped   int // programs that already carry a console sibling
	Unmatched int // runs whose code appears nowhere in the document
}

// String renders the stats in the form batch drivers print.
func (s SpliceStats) String() string {
	return fmt.Sprintf("%d runs, %d spliced, %d already spliced", s.Runs, s.Spliced, s.Skipped)
}

// Splicer inserts captured console output into converted chapters. A Splicer
// carries only configuration and is safe for concurrent use.
type Splicer struct {
	cfg splicerConfig
}

type splicerConfig struct {
	marker   string
	language string
	strict   bool
}

// SplicerOption configures a Splicer.
type SplicerOption func(*Splicer)

// WithOutputMarker overrides the line prefix that identifies console output
// in the rendered page. Default "##", the knitr comment convention.
func WithOutputMarker(marker string) SplicerOption {
	if marker == "" {
		panic("rmd2ptx: output marker cannot be empty")
	}
	return func(sp *Splicer) {
		sp.cfg.marker = marker
	}
}

// WithSpliceLanguage overrides the program language attribute targeted for
// splicing. Default "r".
func WithSpliceLanguage(language string) SplicerOption {
	if language == "" {
		panic("rmd2ptx: splice language cannot be empty")
	}
	return func(sp *Splicer) {
		sp.cfg.language = language
	}
}

// WithStrict requires the run count to equal the program count; any
// difference becomes an alignment error even when every run matched.
func WithStrict(strict bool) SplicerOption {
	return func(sp *Splicer) {
		sp.cfg.strict = strict
	}
}

// NewSplicer creates a Splicer with the given options.
func NewSplicer(opts ...SplicerOption) *Splicer {
	sp := &Splicer{cfg: splicerConfig{
		marker:   DefaultOutputMarker,
		language: DefaultLanguage,
	}}
	for _, opt := range opts {
		opt(sp)
	}
	return sp
}

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

// ExtractRuns collects executed code runs from a rendered bookdown page.
// A source block is a div.sourceCode containing a code element classed with
// the splice language; its run is the next element sibling when that is a
// pre > code block starting with the output marker. Blocks without captured
// output are not runs.
func (sp *Splicer) ExtractRuns(rendered []byte) ([]Run, error) {
	if len(bytes.TrimSpace(rendered)) == 0 {
		return nil, ErrEmptyRendered
	}
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered page: %w", err)
	}

	var runs []Run
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "sourceCode") {
			if code := findSourceCode(n, sp.cfg.language); code != nil {
				if output, ok := sp.outputAfter(n); ok {
					src := htmlText(code)
					runs = append(runs, Run{
						Code:        src,
						Output:      output,
						Fingerprint: Fingerprint(src),
					})
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return runs, nil
}

// outputAfter reads the console output following a source block, when any.
func (sp *Splicer) outputAfter(div *html.Node) (string, bool) {
	sib := nextElement(div)
	if sib == nil || sib.Data != "pre" || hasClass(sib, "sourceCode") {
		return "", false
	}
	code := childElement(sib, "code")
	if code == nil {
		return "", false
	}
	text := htmlText(code)
	if !strings.HasPrefix(text, sp.cfg.marker) {
		return "", false
	}
	return strings.TrimSuffix(text, "\n"), true
}

// findSourceCode returns the first descendant code element classed
// sourceCode plus the given language, or nil.
func findSourceCode(div *html.Node, language string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "code" &&
			hasClass(n, "sourceCode") && hasClass(n, language) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(div)
	return found
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// nextElement returns the next element sibling, skipping text and comments.
func nextElement(n *html.Node) *html.Node {
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode {
			return sib
		}
	}
	return nil
}

// childElement returns the first child element with the given tag, or nil.
func childElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// htmlText concatenates the text content under n. Syntax-highlighting spans
// disappear; entities were already decoded by the parser.
func htmlText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// ---------------------------------------------------------------------------
// Splicing
// ---------------------------------------------------------------------------

// programSite is one program element located both in the parsed document and
// in the file text.
type programSite struct {
	closeLine int    // index of its </program> line
	indent    string // leading whitespace of that line
	candidate bool   // carries the splice language
	spliced   bool   // already followed by a console element
	print     string // fingerprint of its input text
}

// Splice inserts a console/output block after every program element whose
// input matches an extracted run. Matching is by content fingerprint, in
// document order within equal fingerprints, so a chapter that gained or
// reordered code blocks still splices cleanly as long as every run's code is
// present. Programs already followed by a console are left alone, which makes
// re-splicing an already-spliced document a no-op.
//
// Any unmatched run aborts the splice with ErrAlignment and the returned
// stats carry the counts; no output is produced. Untouched regions of the
// input are preserved byte-exact.
func (sp *Splicer) Splice(markup []byte, runs []Run) ([]byte, *SpliceStats, error) {
	stats := &SpliceStats{Runs: len(runs)}
	if len(bytes.TrimSpace(markup)) == 0 {
		return nil, stats, ErrEmptyMarkup
	}
	if err := ptxml.Validate(markup); err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}

	lines := strings.Split(string(markup), "\n")
	sites, err := locatePrograms(markup, lines, sp.cfg.language)
	if err != nil {
		return nil, stats, err
	}
	for _, site := range sites {
		if site.candidate {
			stats.Programs++
		}
	}

	// Queue candidate sites per fingerprint, preserving document order.
	queues := make(map[string][]int)
	for i, site := range sites {
		if site.candidate {
			queues[site.print] = append(queues[site.print], i)
		}
	}

	inserts := make(map[int]string) // close-line index -> console block
	for _, run := range runs {
		queue := queues[run.Fingerprint]
		if len(queue) == 0 {
			stats.Unmatched++
			continue
		}
		site := sites[queue[0]]
		queues[run.Fingerprint] = queue[1:]
		if site.spliced {
			stats.Skipped++
			continue
		}
		inserts[site.closeLine] = consoleBlock(site.indent, run.Output)
		stats.Spliced++
	}

	if stats.Unmatched > 0 {
		return nil, stats, fmt.Errorf("%w: %d runs, %d programs, %d matched, %d unmatched",
			ErrAlignment, stats.Runs, stats.Programs, stats.Spliced+stats.Skipped, stats.Unmatched)
	}
	if sp.cfg.strict && stats.Runs != stats.Programs {
		return nil, stats, fmt.Errorf("%w: strict: %d runs but %d program elements",
			ErrAlignment, stats.Runs, stats.Programs)
	}

	var out []string
	for i, line := range lines {
		out = append(out, line)
		if block, ok := inserts[i]; ok {
			out = append(out, strings.Split(block, "\n")...)
		}
	}
	result := []byte(strings.Join(out, "\n"))

	if err := ptxml.Validate(result); err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrSpliceInternal, err)
	}
	return result, stats, nil
}

// consoleBlock renders the inserted element: tags at the program's
// indentation, CDATA content at column zero.
func consoleBlock(indent, output string) string {
	return indent + "<console>\n" +
		indent + "  <output>" + ptxml.CDATA(cdataBody(output)) + "</output>\n" +
		indent + "</console>"
}

// locatePrograms pairs every program element of the parsed document with its
// </program> close line in the file text. Close-tag text inside CDATA
// sections is not markup and is skipped.
func locatePrograms(markup []byte, lines []string, language string) ([]programSite, error) {
	doc, err := ptxml.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}
	elems, err := doc.XPath("//program")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpliceInternal, err)
	}

	var closes []int
	inCDATA := false
	for i, line := range lines {
		if !inCDATA && strings.TrimSpace(line) == "</program>" {
			closes = append(closes, i)
		}
		inCDATA = cdataStateAfter(line, inCDATA)
	}
	if len(closes) != len(elems) {
		return nil, fmt.Errorf("%w: %d program elements but %d close tags in text",
			ErrSpliceInternal, len(elems), len(closes))
	}

	sites := make([]programSite, len(elems))
	for i, elem := range elems {
		line := lines[closes[i]]
		next := elem.NextElement()
		sites[i] = programSite{
			closeLine: closes[i],
			indent:    line[:len(line)-len(strings.TrimLeft(line, " \t"))],
			candidate: elem.Attr("language") == language,
			spliced:   next != nil && next.Name() == "console",
			print:     Fingerprint(elem.FirstElement("input").InnerText()),
		}
	}
	return sites, nil
}

// cdataStateAfter tracks whether the scanner is inside a CDATA section once
// this line has been consumed.
func cdataStateAfter(line string, in bool) bool {
	for {
		if in {
			i := strings.Index(line, "]]>")
			if i < 0 {
				return true
			}
			line = line[i+3:]
			in = false
		} else {
			i := strings.Index(line, "<![CDATA[")
			if i < 0 {
				return false
			}
			line = line[i+9:]
			in = true
		}
	}
}
