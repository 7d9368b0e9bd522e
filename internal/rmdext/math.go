package rmdext

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindMath identifies inline math nodes ($...$).
var KindMath = ast.NewNodeKind("InlineMath")

// Math is an inline math span. Its children are raw text segments holding
// the LaTeX source without the dollar delimiters.
type Math struct {
	ast.BaseInline
}

// NewMath returns an empty inline math node.
func NewMath() *Math {
	return &Math{}
}

// Kind implements ast.Node.
func (n *Math) Kind() ast.NodeKind {
	return KindMath
}

// Dump implements ast.Node.
func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// KindDisplayMath identifies display math nodes ($$...$$).
var KindDisplayMath = ast.NewNodeKind("DisplayMath")

// DisplayMath is a displayed equation. Its children are raw text segments
// holding the LaTeX source, which may span several lines.
type DisplayMath struct {
	ast.BaseInline
}

// NewDisplayMath returns an empty display math node.
func NewDisplayMath() *DisplayMath {
	return &DisplayMath{}
}

// Kind implements ast.Node.
func (n *DisplayMath) Kind() ast.NodeKind {
	return KindDisplayMath
}

// Dump implements ast.Node.
func (n *DisplayMath) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

var displayDelimiter = []byte("$$")

// mathParser recognizes $...$ and $$...$$ spans. Dollar signs in prose do
// not qualify: an opener must be followed by a non-space and a closer must
// be preceded by a non-space and not be followed by a digit, so "$5 and $6"
// stays literal text.
type mathParser struct{}

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) == 0 {
		return nil
	}
	if bytes.HasPrefix(line, displayDelimiter) {
		return p.parseDisplay(block, line, seg)
	}
	return p.parseInline(block, line, seg)
}

func (p *mathParser) parseInline(block text.Reader, line []byte, seg text.Segment) ast.Node {
	if len(line) < 3 || line[1] == ' ' || line[1] == '\t' {
		return nil
	}
	for i := 2; i < len(line); i++ {
		if line[i] != '$' {
			continue
		}
		prev := line[i-1]
		if prev == ' ' || prev == '\t' || prev == '\\' {
			continue
		}
		if i+1 < len(line) && line[i+1] >= '0' && line[i+1] <= '9' {
			continue
		}
		node := NewMath()
		node.AppendChild(node, ast.NewTextSegment(text.NewSegment(seg.Start+1, seg.Start+i)))
		block.Advance(i + 1)
		return node
	}
	return nil
}

// parseDisplay handles $$...$$, scanning past soft line breaks when the
// closing delimiter sits on a later line of the same paragraph. Without a
// closer the reader is restored and the dollars stay literal text.
func (p *mathParser) parseDisplay(block text.Reader, first []byte, firstSeg text.Segment) ast.Node {
	node := NewDisplayMath()
	rest := first[2:]
	if i := bytes.Index(rest, displayDelimiter); i >= 0 {
		if i > 0 {
			node.AppendChild(node, ast.NewTextSegment(text.NewSegment(firstSeg.Start+2, firstSeg.Start+2+i)))
		}
		block.Advance(2 + i + 2)
		return node
	}

	startLine, startPos := block.Position()
	var segments []text.Segment
	if firstSeg.Start+2 < firstSeg.Stop {
		segments = append(segments, text.NewSegment(firstSeg.Start+2, firstSeg.Stop))
	}
	block.AdvanceLine()
	for {
		line, seg := block.PeekLine()
		if len(line) == 0 {
			block.SetPosition(startLine, startPos)
			return nil
		}
		if i := bytes.Index(line, displayDelimiter); i >= 0 {
			if i > 0 {
				segments = append(segments, text.NewSegment(seg.Start, seg.Start+i))
			}
			for _, s := range segments {
				node.AppendChild(node, ast.NewTextSegment(s))
			}
			block.Advance(i + 2)
			return node
		}
		segments = append(segments, seg)
		block.AdvanceLine()
	}
}
