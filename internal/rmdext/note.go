package rmdext

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindNote identifies inlined footnote nodes.
var KindNote = ast.NewNodeKind("Note")

// Note is a footnote placed at its point of use. Its children are the
// inline content of the footnote definition.
type Note struct {
	ast.BaseInline
}

// NewNote returns an empty note node.
func NewNote() *Note {
	return &Note{}
}

// Kind implements ast.Node.
func (n *Note) Kind() ast.NodeKind {
	return KindNote
}

// Dump implements ast.Node.
func (n *Note) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// noteTransformer rewrites the footnote extension's output: every footnote
// marker becomes a Note holding the definition's inline content, and the
// trailing footnote list is detached from the document. It must run after
// the footnote extension's own transformer has resolved indexes.
type noteTransformer struct{}

func (t *noteTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var list *extast.FootnoteList
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if l, ok := c.(*extast.FootnoteList); ok {
			list = l
			break
		}
	}
	if list == nil {
		return
	}

	defs := make(map[int]*extast.Footnote)
	flat := make(map[int]string)
	for c := list.FirstChild(); c != nil; c = c.NextSibling() {
		if f, ok := c.(*extast.Footnote); ok {
			defs[f.Index] = f
			flat[f.Index] = textOf(f, source)
		}
	}

	// Collect first, replace after: detaching nodes mid-walk would cut the
	// sibling chain the walk is iterating.
	var links []*extast.FootnoteLink
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if l, ok := n.(*extast.FootnoteLink); ok {
				links = append(links, l)
			}
		}
		return ast.WalkContinue, nil
	})

	moved := make(map[int]bool)
	for _, link := range links {
		note := NewNote()
		def := defs[link.Index]
		switch {
		case def == nil:
			// The footnote extension drops markers without definitions
			// before this transformer runs; nothing to inline.
		case moved[link.Index]:
			// A definition referenced twice keeps its full inline content
			// at the first use; later uses carry the flattened text.
			note.AppendChild(note, ast.NewString([]byte(flat[link.Index])))
		default:
			moved[link.Index] = true
			moveDefinitionContent(def, note)
		}
		parent := link.Parent()
		parent.ReplaceChild(parent, link, note)
	}

	doc.RemoveChild(doc, list)
}

// textOf flattens the plain text under n, turning soft line breaks into
// spaces.
func textOf(n ast.Node, source []byte) string {
	var b strings.Builder
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

// moveDefinitionContent reparents the definition's inline content into note,
// dropping backlink markers and joining multiple paragraphs with a space.
func moveDefinitionContent(def *extast.Footnote, note *Note) {
	first := true
	for block := def.FirstChild(); block != nil; block = block.NextSibling() {
		if !first {
			note.AppendChild(note, ast.NewString([]byte(" ")))
		}
		first = false
		child := block.FirstChild()
		for child != nil {
			next := child.NextSibling()
			if child.Kind() != extast.KindFootnoteBacklink {
				note.AppendChild(note, child)
			}
			child = next
		}
	}
}
