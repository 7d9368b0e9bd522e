// Package ptxml provides parsing, XPath queries, validation, and escaping
// for PreTeXt XML documents.
//
// Well-formedness is checked with Go's xml.Decoder, which does not fetch
// external entities; entity expansion is additionally disabled so a hostile
// document cannot smuggle definitions through the validator.
package ptxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// ErrNotWellFormed reports a document the validator rejected.
var ErrNotWellFormed = errors.New("document is not well-formed XML")

// Document represents a parsed PreTeXt document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an element within a Document.
type Node struct {
	node *xmlquery.Node
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Validate checks data for XML well-formedness. The returned error wraps
// ErrNotWellFormed and carries the line of the first failure.
func Validate(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	// XXE protection: refuse all entity expansion.
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrNotWellFormed, lineAt(data, decoder.InputOffset()), err)
		}
	}
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return 1 + bytes.Count(data[:offset], []byte{'\n'})
}

// XPath executes an XPath query and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}

	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst executes an XPath query and returns the first match, or nil.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Root returns the document's root element, or nil for an empty document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// InnerText returns all text content of the node and its descendants,
// CDATA included.
func (n *Node) InnerText() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Attr returns the value of the named attribute, or "". Namespaced
// attributes match on either the local name or the prefixed form, so both
// Attr("id") and Attr("xml:id") find xml:id.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	for _, attr := range n.node.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
		if attr.Name.Space != "" && attr.Name.Space+":"+attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// NextElement returns the node's next element sibling, skipping text and
// comment nodes, or nil when the node is the last element of its parent.
func (n *Node) NextElement() *Node {
	if n == nil || n.node == nil {
		return nil
	}
	for sib := n.node.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == xmlquery.ElementNode {
			return &Node{node: sib}
		}
	}
	return nil
}

// FirstElement returns the node's first element child with the given name,
// or nil.
func (n *Node) FirstElement(name string) *Node {
	if n == nil || n.node == nil {
		return nil
	}
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == name {
			return &Node{node: child}
		}
	}
	return nil
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
)

// EscapeText escapes character data for use inside an element.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr escapes character data for use inside a double-quoted attribute.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// CDATA wraps s in a CDATA section. A literal "]]>" inside s terminates a
// CDATA section early, so it is split across two sections.
func CDATA(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}
