package rmd2ptx

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/statpress/go-rmd2ptx/internal/chunkopt"
	"github.com/statpress/go-rmd2ptx/internal/ptxml"
	"github.com/statpress/go-rmd2ptx/internal/rmdext"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

// xincludeNamespace is declared on every chapter root so book-level
// assembly can stitch chapters together with xi:include.
const xincludeNamespace = "http://www.w3.org/2001/XInclude"

// sectionElements maps heading levels to PreTeXt sectioning elements.
var sectionElements = map[int]string{
	2: "section",
	3: "subsection",
	4: "subsubsection",
}

var (
	// Backslash escapes resolve before XML escaping; CommonMark escapes
	// punctuation only.
	punctEscape = regexp.MustCompile(`\\([[:punct:]])`)

	// knitr image call inside a figure chunk.
	includeGraphicsCall = regexp.MustCompile(`(?:knitr::)?include_graphics\(\s*["']([^"']+)["']`)
)

type sectionFrame struct {
	level int
	name  string
}

// ptxRenderer walks a parsed chapter and writes the PreTeXt document.
// A renderer carries per-document state and is used for one render only.
type ptxRenderer struct {
	cfg   serviceConfig
	meta  ChapterMeta
	ids   *idRegistry
	stats ConvertStats

	depth      int
	h1Seen     bool
	chunkIndex int
	sections   []sectionFrame
	attrStack  [][]ast.Node
}

func newPTXRenderer(cfg serviceConfig, meta ChapterMeta) *ptxRenderer {
	r := &ptxRenderer{cfg: cfg, meta: meta, ids: newIDRegistry()}
	r.ids.claim(meta.ID)
	return r
}

// Compile-time check that ptxRenderer implements renderer.NodeRenderer.
var _ renderer.NodeRenderer = (*ptxRenderer)(nil)

func (r *ptxRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindDocument, r.document)
	reg.Register(ast.KindHeading, r.heading)
	reg.Register(ast.KindParagraph, r.paragraph)
	reg.Register(ast.KindTextBlock, r.paragraph)
	reg.Register(ast.KindText, r.text)
	reg.Register(ast.KindString, r.str)
	reg.Register(ast.KindEmphasis, r.emphasis)
	reg.Register(ast.KindCodeSpan, r.codeSpan)
	reg.Register(ast.KindFencedCodeBlock, r.fencedCode)
	reg.Register(ast.KindList, r.list)
	reg.Register(ast.KindListItem, r.listItem)
	reg.Register(ast.KindBlockquote, r.blockquote)
	reg.Register(ast.KindLink, r.link)

	reg.Register(rmdext.KindMath, r.math)
	reg.Register(rmdext.KindDisplayMath, r.displayMath)
	reg.Register(rmdext.KindReference, r.reference)
	reg.Register(rmdext.KindNote, r.note)

	// Constructs the chapter corpus never uses fail loudly instead of
	// degrading into broken PreTeXt.
	reg.Register(ast.KindAutoLink, r.unsupported)
	reg.Register(ast.KindCodeBlock, r.unsupported)
	reg.Register(ast.KindHTMLBlock, r.unsupported)
	reg.Register(ast.KindImage, r.unsupported)
	reg.Register(ast.KindRawHTML, r.unsupported)
	reg.Register(ast.KindThematicBreak, r.unsupported)

	// Footnote machinery is rewritten into Note nodes before rendering;
	// any survivor indicates a transform gap.
	reg.Register(extast.KindFootnote, r.unsupported)
	reg.Register(extast.KindFootnoteBacklink, r.unsupported)
	reg.Register(extast.KindFootnoteLink, r.unsupported)
	reg.Register(extast.KindFootnoteList, r.unsupported)
}

// ---------------------------------------------------------------------------
// Write helpers
// ---------------------------------------------------------------------------

func (r *ptxRenderer) raw(w util.BufWriter, s string) {
	_, _ = w.WriteString(s)
}

func (r *ptxRenderer) writeIndent(w util.BufWriter) {
	for i := 0; i < r.depth; i++ {
		_, _ = w.WriteString("  ")
	}
}

// openLine writes s on its own indented line.
func (r *ptxRenderer) openLine(w util.BufWriter, s string) {
	r.writeIndent(w)
	r.raw(w, s)
	r.raw(w, "\n")
}

// writeText runs prose through the inline text pipeline: backslash escapes
// resolve, XML specials are escaped, and " -- " becomes an mdash element.
func (r *ptxRenderer) writeText(w util.BufWriter, s string) {
	s = punctEscape.ReplaceAllString(s, "$1")
	r.raw(w, escapeInline(s))
}

// escapeInline escapes XML specials and converts the spaced double hyphen.
func escapeInline(s string) string {
	s = ptxml.EscapeText(s)
	return strings.ReplaceAll(s, " -- ", " <mdash/> ")
}

// cdataBody shapes code for a CDATA block that opens at the end of its tag
// line and closes at column zero.
func cdataBody(code string) string {
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return "\n" + code
}

// ---------------------------------------------------------------------------
// Position reporting
// ---------------------------------------------------------------------------

func lineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return 1 + bytes.Count(source[:offset], []byte{'\n'})
}

type linedNode interface {
	Lines() *text.Segments
}

// nodeLine reports the 1-based source line a node starts on, or 0 when the
// node carries no position.
func nodeLine(n ast.Node, source []byte) int {
	if raw, ok := n.(*ast.RawHTML); ok && raw.Segments.Len() > 0 {
		return lineOf(source, raw.Segments.At(0).Start)
	}
	if ln, ok := n.(linedNode); ok {
		if lines := ln.Lines(); lines != nil && lines.Len() > 0 {
			return lineOf(source, lines.At(0).Start)
		}
	}
	line := 0
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				line = lineOf(source, t.Segment.Start)
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return line
}

func (r *ptxRenderer) unsupportedErr(n ast.Node, source []byte, what string) error {
	if line := nodeLine(n, source); line > 0 {
		return fmt.Errorf("%w: %s at line %d", ErrUnsupportedConstruct, what, line)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedConstruct, what)
}

func describeKind(k ast.NodeKind) string {
	switch k {
	case ast.KindAutoLink:
		return "autolink"
	case ast.KindCodeBlock:
		return "indented code block"
	case ast.KindHTMLBlock:
		return "raw HTML block"
	case ast.KindImage:
		return "image outside a figure chunk"
	case ast.KindRawHTML:
		return "raw inline HTML"
	case ast.KindThematicBreak:
		return "thematic break"
	}
	return k.String()
}

func (r *ptxRenderer) unsupported(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	return ast.WalkStop, r.unsupportedErr(n, source, describeKind(n.Kind()))
}

// ---------------------------------------------------------------------------
// Document structure
// ---------------------------------------------------------------------------

func (r *ptxRenderer) document(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.raw(w, xmlDeclaration+"\n")
		r.raw(w, `<chapter xml:id="`+ptxml.EscapeAttr(r.meta.ID)+`" xmlns:xi="`+xincludeNamespace+`">`+"\n")
		r.depth = 1
		r.writeIndent(w)
		r.raw(w, "<title>")
		r.writeText(w, r.meta.Title)
		r.raw(w, "</title>\n")
	} else {
		r.closeSections(w, 2)
		r.raw(w, "</chapter>\n")
	}
	return ast.WalkContinue, nil
}

// closeSections closes every open sectioning element at or below level,
// returning the indentation to the enclosing container.
func (r *ptxRenderer) closeSections(w util.BufWriter, level int) {
	for len(r.sections) > 0 && r.sections[len(r.sections)-1].level >= level {
		top := r.sections[len(r.sections)-1]
		r.sections = r.sections[:len(r.sections)-1]
		r.depth--
		r.openLine(w, "</"+top.name+">")
	}
}

func headingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	}
	return ""
}

func (r *ptxRenderer) heading(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	node := n.(*ast.Heading)

	if node.Level == 1 {
		if !entering {
			return ast.WalkContinue, nil
		}
		if r.h1Seen {
			return ast.WalkStop, r.unsupportedErr(n, source, "second level-1 heading")
		}
		// The first level-1 heading was consumed into the chapter element
		// during metadata resolution.
		r.h1Seen = true
		return ast.WalkSkipChildren, nil
	}

	name, ok := sectionElements[node.Level]
	if !ok {
		if !entering {
			return ast.WalkContinue, nil
		}
		return ast.WalkStop, r.unsupportedErr(n, source, fmt.Sprintf("heading level %d", node.Level))
	}

	if entering {
		if len(r.attrStack) > 0 {
			return ast.WalkStop, r.unsupportedErr(n, source, "heading inside blockquote")
		}
		r.closeSections(w, node.Level)
		id := headingID(node)
		if id == "" {
			id = SlugFromTitle(flattenText(node, source))
		}
		open := "<" + name
		if id != "" {
			open += ` xml:id="` + ptxml.EscapeAttr(r.ids.claim(NormalizeID(id))) + `"`
		}
		open += ">"
		r.openLine(w, open)
		r.depth++
		r.stats.Sections++
		r.sections = append(r.sections, sectionFrame{level: node.Level, name: name})
		r.writeIndent(w)
		r.raw(w, "<title>")
	} else {
		r.raw(w, "</title>\n")
	}
	return ast.WalkContinue, nil
}

func (r *ptxRenderer) paragraph(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.writeIndent(w)
		r.raw(w, "<p>")
	} else {
		r.raw(w, "</p>\n")
	}
	return ast.WalkContinue, nil
}

func (r *ptxRenderer) list(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	node := n.(*ast.List)
	tag := "ul"
	if node.IsOrdered() {
		tag = "ol"
	}
	if entering {
		r.openLine(w, "<"+tag+">")
		r.depth++
	} else {
		r.depth--
		r.openLine(w, "</"+tag+">")
	}
	return ast.WalkContinue, nil
}

func (r *ptxRenderer) listItem(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.openLine(w, "<li>")
		r.depth++
	} else {
		r.depth--
		r.openLine(w, "</li>")
	}
	return ast.WalkContinue, nil
}

func (r *ptxRenderer) blockquote(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.openLine(w, "<blockquote>")
		r.depth++
		var tail []ast.Node
		if last := n.LastChild(); last != nil && last.Kind() == ast.KindParagraph {
			tail = splitAttribution(last, source)
		}
		r.attrStack = append(r.attrStack, tail)
		return ast.WalkContinue, nil
	}

	tail := r.attrStack[len(r.attrStack)-1]
	r.attrStack = r.attrStack[:len(r.attrStack)-1]
	if len(tail) > 0 {
		r.writeIndent(w)
		r.raw(w, "<attribution>")
		if err := r.renderInlineNodes(w, source, tail); err != nil {
			return ast.WalkStop, err
		}
		r.raw(w, "</attribution>\n")
	}
	r.depth--
	r.openLine(w, "</blockquote>")
	return ast.WalkContinue, nil
}

// splitAttribution detaches a trailing "-- Author" line from a blockquote
// paragraph and returns its inline nodes with the marker stripped. The
// attribution must start its own line inside the quote.
func splitAttribution(para ast.Node, source []byte) []ast.Node {
	for c := para.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		v := t.Value(source)
		if !bytes.HasPrefix(v, []byte("--")) {
			continue
		}
		prev, ok := c.PreviousSibling().(*ast.Text)
		if !ok || !prev.SoftLineBreak() {
			continue
		}

		k := 2
		for k < len(v) && (v[k] == ' ' || v[k] == '\t') {
			k++
		}
		t.Segment = text.NewSegment(t.Segment.Start+k, t.Segment.Stop)
		prev.SetSoftLineBreak(false)

		var tail []ast.Node
		for c != nil {
			next := c.NextSibling()
			para.RemoveChild(para, c)
			tail = append(tail, c)
			c = next
		}
		return tail
	}
	return nil
}

// renderInlineNodes renders detached inline nodes through the same handlers
// the registered walk uses.
func (r *ptxRenderer) renderInlineNodes(w util.BufWriter, source []byte, nodes []ast.Node) error {
	for _, node := range nodes {
		err := ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			switch n.Kind() {
			case ast.KindText:
				return r.text(w, source, n, entering)
			case ast.KindString:
				return r.str(w, source, n, entering)
			case ast.KindEmphasis:
				return r.emphasis(w, source, n, entering)
			case ast.KindCodeSpan:
				return r.codeSpan(w, source, n, entering)
			case ast.KindLink:
				return r.link(w, source, n, entering)
			case rmdext.KindMath:
				return r.math(w, source, n, entering)
			case rmdext.KindDisplayMath:
				return r.displayMath(w, source, n, entering)
			case rmdext.KindReference:
				return r.reference(w, source, n, entering)
			case rmdext.KindNote:
				return r.note(w, source, n, entering)
			default:
				return r.unsupported(w, source, n, entering)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Inline constructs
// ---------------------------------------------------------------------------

func (r *ptxRenderer) text(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.Text)
	if node.IsRaw() {
		r.raw(w, string(node.Value(source)))
	} else {
		r.writeText(w, string(node.Value(source)))
	}
	if node.SoftLineBreak() || node.HardLineBreak() {
		r.raw(w, "\n")
		r.writeIndent(w)
	}
	return ast.WalkContinue, nil
}

func (r *ptxRenderer) str(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		node := n.(*ast.String)
		r.writeText(w, string(node.Value))
	}
	return ast.WalkContinue, nil
}

func (r *ptxRenderer) emphasis(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	node := n.(*ast.Emphasis)
	if node.Level == 1 && wrapsStrongOnly(node) {
		return ast.WalkContinue, nil
	}
	tag := "em"
	if node.Level >= 2 {
		tag = "term"
	}
	if entering {
		r.raw(w, "<"+tag+">")
	} else {
		r.raw(w, "</"+tag+">")
	}
	return ast.WalkContinue, nil
}

// wrapsStrongOnly reports whether an emphasis node exists only to wrap a
// strong child, which is how ***x*** parses; the combined form renders as a
// single term element.
func wrapsStrongOnly(n *ast.Emphasis) bool {
	if n.ChildCount() != 1 {
		return false
	}
	child, ok := n.FirstChild().(*ast.Emphasis)
	return ok && child.Level >= 2
}

func (r *ptxRenderer) codeSpan(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Value(source))
		}
	}
	code := strings.TrimSuffix(b.String(), "\n")
	code = strings.ReplaceAll(code, "\n", " ")
	r.raw(w, "<c>"+ptxml.EscapeText(code)+"</c>")
	return ast.WalkSkipChildren, nil
}

// mathContent joins the raw LaTeX under n. Content with XML-active
// characters or a LaTeX environment is wrapped in CDATA instead of escaped.
func mathContent(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Value(source))
		}
	}
	s := strings.TrimSpace(b.String())
	if strings.ContainsAny(s, "&<>") || strings.Contains(s, `\begin`) {
		return ptxml.CDATA(s)
	}
	return s
}

func (r *ptxRenderer) math(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	r.raw(w, "<m>"+mathContent(n, source)+"</m>")
	return ast.WalkSkipChildren, nil
}

func (r *ptxRenderer) displayMath(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	r.raw(w, "<me>"+mathContent(n, source)+"</me>")
	return ast.WalkSkipChildren, nil
}

func (r *ptxRenderer) reference(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*rmdext.Reference)
	var target string
	switch node.RefKind {
	case "fig":
		target = r.cfg.figurePrefix + NormalizeID(node.Label)
	case "tab":
		target = r.cfg.tablePrefix + NormalizeID(node.Label)
	case "":
		target = NormalizeID(node.Label)
	default:
		target = NormalizeID(node.RefKind + "-" + node.Label)
	}
	r.stats.Xrefs++
	r.raw(w, `<xref ref="`+ptxml.EscapeAttr(target)+`"/>`)
	return ast.WalkContinue, nil
}

func (r *ptxRenderer) note(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.stats.Footnotes++
		r.raw(w, "<fn>")
	} else {
		r.raw(w, "</fn>")
	}
	return ast.WalkContinue, nil
}

func (r *ptxRenderer) link(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	node := n.(*ast.Link)
	if entering {
		r.raw(w, `<url href="`+ptxml.EscapeAttr(string(node.Destination))+`">`)
	} else {
		r.raw(w, "</url>")
	}
	return ast.WalkContinue, nil
}

// ---------------------------------------------------------------------------
// Code blocks
// ---------------------------------------------------------------------------

func (r *ptxRenderer) fencedCode(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.FencedCodeBlock)

	info := ""
	if node.Info != nil {
		info = strings.TrimSpace(string(node.Info.Value(source)))
	}
	code := string(node.Lines().Value(source))

	switch {
	case chunkopt.IsChunkHeader(info):
		opts, err := chunkopt.Parse(info)
		if err != nil {
			return ast.WalkStop, fmt.Errorf("%w: line %d: %v", ErrBadChunkHeader, fenceLine(node, source), err)
		}
		r.chunkIndex++
		return r.renderChunk(w, opts, code)
	case info == "":
		r.renderConsole(w, code)
		return ast.WalkContinue, nil
	default:
		lang, _, _ := strings.Cut(info, " ")
		r.renderProgram(w, lang, code)
		return ast.WalkContinue, nil
	}
}

// fenceLine reports the source line of a fence header.
func fenceLine(node *ast.FencedCodeBlock, source []byte) int {
	if node.Info != nil {
		return lineOf(source, node.Info.Segment.Start)
	}
	if lines := node.Lines(); lines.Len() > 0 {
		return lineOf(source, lines.At(0).Start) - 1
	}
	return 0
}

func (r *ptxRenderer) renderChunk(w util.BufWriter, opts *chunkopt.Options, code string) (ast.WalkStatus, error) {
	if !opts.Include {
		// include=FALSE chunks are invisible in the rendered book.
		return ast.WalkContinue, nil
	}
	if opts.FigCap != "" {
		r.renderFigure(w, opts, code)
		return ast.WalkContinue, nil
	}
	if !opts.Echo {
		// bookdown hides the source of echo=FALSE chunks; the rendered
		// page shows only their output, so the chapter carries nothing.
		return ast.WalkContinue, nil
	}
	r.renderProgram(w, r.chunkLanguage(opts), code)
	return ast.WalkContinue, nil
}

// chunkLanguage maps the chunk engine to the program language attribute.
// Chunks in the book's primary language take the configured attribute;
// other engines keep their own name.
func (r *ptxRenderer) chunkLanguage(opts *chunkopt.Options) string {
	if strings.EqualFold(opts.Language, DefaultLanguage) {
		return r.cfg.language
	}
	return strings.ToLower(opts.Language)
}

func (r *ptxRenderer) renderProgram(w util.BufWriter, language, code string) {
	r.stats.Programs++
	r.openLine(w, `<program language="`+ptxml.EscapeAttr(language)+`">`)
	r.depth++
	r.writeIndent(w)
	r.raw(w, "<input>"+ptxml.CDATA(cdataBody(code))+"</input>\n")
	r.depth--
	r.openLine(w, "</program>")
}

func (r *ptxRenderer) renderConsole(w util.BufWriter, output string) {
	r.stats.Consoles++
	r.openLine(w, "<console>")
	r.depth++
	r.writeIndent(w)
	r.raw(w, "<output>"+ptxml.CDATA(cdataBody(output))+"</output>\n")
	r.depth--
	r.openLine(w, "</console>")
}

func (r *ptxRenderer) renderFigure(w util.BufWriter, opts *chunkopt.Options, code string) {
	label := opts.Label
	if label == "" {
		label = fmt.Sprintf("unnamed-chunk-%d", r.chunkIndex)
	}
	id := r.ids.claim(r.cfg.figurePrefix + NormalizeID(label))
	caption := escapeInline(opts.FigCap)
	source := r.figureSource(code, label)

	r.stats.Figures++
	r.openLine(w, `<figure xml:id="`+ptxml.EscapeAttr(id)+`">`)
	r.depth++
	r.writeIndent(w)
	r.raw(w, "<caption>"+caption+"</caption>\n")
	r.openLine(w, `<image source="`+ptxml.EscapeAttr(source)+`" width="`+ptxml.EscapeAttr(r.cfg.imageWidth)+`">`)
	r.depth++
	r.writeIndent(w)
	r.raw(w, "<description>"+caption+"</description>\n")
	r.depth--
	r.openLine(w, "</image>")
	r.depth--
	r.openLine(w, "</figure>")

	if opts.Echo && hasCodeBeyondGraphics(code) {
		r.openLine(w, "<remark>")
		r.depth++
		r.writeIndent(w)
		r.raw(w, "<title>R Code</title>\n")
		r.renderProgram(w, r.chunkLanguage(opts), code)
		r.depth--
		r.openLine(w, "</remark>")
	}
}

// figureSource resolves the image path for a figure chunk: an explicit
// include_graphics call wins, with the bookdown img directory rewritten to
// the configured one; otherwise the image is expected among the generated
// plots under the chunk's label.
func (r *ptxRenderer) figureSource(code, label string) string {
	if m := includeGraphicsCall.FindStringSubmatch(code); m != nil {
		path := m[1]
		if rest, ok := strings.CutPrefix(path, "./img/"); ok {
			return r.cfg.imageDir + "/" + rest
		}
		if rest, ok := strings.CutPrefix(path, "img/"); ok {
			return r.cfg.imageDir + "/" + rest
		}
		return path
	}
	return r.cfg.generatedDir + "/" + label + ".png"
}

// hasCodeBeyondGraphics reports whether a figure chunk contains code other
// than the include_graphics call itself.
func hasCodeBeyondGraphics(code string) bool {
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "include_graphics(") {
			continue
		}
		return true
	}
	return false
}
