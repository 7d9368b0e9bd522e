package rmdext

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindReference identifies bookdown cross-reference nodes.
var KindReference = ast.NewNodeKind("CrossReference")

// Reference is a bookdown \@ref(...) cross-reference. RefKind is the part
// before the colon ("fig", "tab") or empty for section references; Label is
// the raw label as written, without any id normalization applied.
type Reference struct {
	ast.BaseInline
	RefKind string
	Label   string
}

// NewReference returns a cross-reference node for the given kind and label.
func NewReference(refKind, label string) *Reference {
	return &Reference{RefKind: refKind, Label: label}
}

// Kind implements ast.Node.
func (n *Reference) Kind() ast.NodeKind {
	return KindReference
}

// Dump implements ast.Node.
func (n *Reference) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"RefKind": n.RefKind,
		"Label":   n.Label,
	}, nil)
}

var refMarker = regexp.MustCompile(`^\\@ref\(([A-Za-z][A-Za-z0-9:._-]*)\)`)

// referenceParser recognizes \@ref(fig:label), \@ref(tab:label) and
// \@ref(label). Any other backslash sequence is left to the standard escape
// handling.
type referenceParser struct{}

func (p *referenceParser) Trigger() []byte {
	return []byte{'\\'}
}

func (p *referenceParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := refMarker.FindSubmatch(line)
	if m == nil {
		return nil
	}
	refKind, label, found := strings.Cut(string(m[1]), ":")
	if !found {
		label = refKind
		refKind = ""
	}
	block.Advance(len(m[0]))
	return NewReference(refKind, label)
}
