// Package rmdext extends goldmark with the R-markdown inline constructs
// used by bookdown chapters: inline and display math, bookdown
// cross-references, and footnotes inlined at their point of use.
package rmdext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

type rmdExtension struct{}

// New returns an extender that registers the R-markdown inline parsers and
// the footnote inlining transformer. The goldmark footnote extension is
// wired in as part of the bundle; registering it separately is not needed.
func New() goldmark.Extender {
	return &rmdExtension{}
}

func (e *rmdExtension) Extend(m goldmark.Markdown) {
	extension.Footnote.Extend(m)
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(&mathParser{}, 150),
			util.Prioritized(&referenceParser{}, 160),
		),
		parser.WithASTTransformers(
			util.Prioritized(&noteTransformer{}, 2000),
		),
	)
}
