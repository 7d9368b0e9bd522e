package rmd2ptx

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/statpress/go-rmd2ptx/internal/ptxml"
	"github.com/statpress/go-rmd2ptx/internal/rmdext"
)

// Service converts RMarkdown chapter sources into PreTeXt chapter documents.
// A Service is not safe for concurrent use; batch drivers give each worker
// its own instance through a pool.
type Service struct {
	cfg serviceConfig
	md  goldmark.Markdown
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithFigurePrefix).
func New(opts ...Option) *Service {
	s := &Service{cfg: defaultServiceConfig()}
	for _, opt := range opts {
		opt(s)
	}
	s.md = goldmark.New(
		goldmark.WithExtensions(rmdext.New()),
		goldmark.WithParserOptions(parser.WithAttribute()),
	)
	return s
}

// Convert runs the full pipeline and returns the PreTeXt document with its
// resolved metadata and conversion statistics. The context is used for
// cancellation; the configured timeout is applied on top of it.
func (s *Service) Convert(ctx context.Context, input Input) (*ConvertResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()

	type outcome struct {
		res *ConvertResult
		err error
	}

	done := make(chan outcome, 1)

	go func() {
		res, err := s.convert(input)
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}

// convert is the synchronous pipeline: preprocess, split front matter,
// parse, resolve chapter identity, render, validate.
func (s *Service) convert(input Input) (*ConvertResult, error) {
	content, err := Preprocess(input.Source)
	if err != nil {
		return nil, fmt.Errorf("preprocessing: %w", err)
	}

	fm, body, err := SplitFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("reading front matter: %w", err)
	}

	source := []byte(body)
	doc := s.md.Parser().Parse(text.NewReader(source))

	meta, err := resolveMeta(input.Meta, fm, doc, source)
	if err != nil {
		return nil, err
	}

	ptx := newPTXRenderer(s.cfg, meta)
	rend := renderer.NewRenderer(renderer.WithNodeRenderers(util.Prioritized(ptx, 0)))

	var buf bytes.Buffer
	if err := rend.Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("rendering: %w", err)
	}

	out := buf.Bytes()
	if err := ptxml.Validate(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	stats := ptx.stats
	stats.RenamedIDs = ptx.ids.renamed
	return &ConvertResult{PTX: out, Meta: meta, Stats: stats}, nil
}

// resolveMeta fills the chapter identity by precedence: explicitly supplied
// fields win, then front matter keys, then the document's first level-1
// heading with its {#id} attribute. A title-only resolution derives the id
// from the title; a chapter that resolves to no id at all is an error.
func resolveMeta(meta ChapterMeta, fm FrontMatter, doc ast.Node, source []byte) (ChapterMeta, error) {
	if meta.ID == "" {
		meta.ID = fm.ID
	}
	if meta.Title == "" {
		meta.Title = fm.Title
	}

	if meta.ID == "" || meta.Title == "" {
		id, title := firstHeading(doc, source)
		if meta.ID == "" {
			meta.ID = id
		}
		if meta.ID == "" {
			meta.ID = SlugFromTitle(title)
		}
		if meta.Title == "" {
			meta.Title = title
		}
	}

	meta.ID = NormalizeID(meta.ID)
	if meta.ID == "" {
		return meta, ErrMissingChapterID
	}
	if meta.Title == "" {
		meta.Title = meta.ID
	}
	return meta, nil
}

// firstHeading returns the id attribute and flattened title text of the
// document's first level-1 heading.
func firstHeading(doc ast.Node, source []byte) (id, title string) {
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		h, ok := c.(*ast.Heading)
		if !ok || h.Level != 1 {
			continue
		}
		return headingID(h), flattenText(h, source)
	}
	return "", ""
}

// flattenText collects the plain text under n, with soft line breaks
// becoming spaces.
func flattenText(n ast.Node, source []byte) string {
	var b bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
