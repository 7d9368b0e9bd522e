// Package chunkopt parses knitr chunk headers such as
//
//	{r histogram-margins, fig.cap="A histogram", echo=FALSE, fig.width=6}
//
// using a real lexer and grammar instead of comma splitting, so quoted
// captions containing commas and nested R calls like c(1, 2) parse cleanly.
package chunkopt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrBadHeader reports a chunk header the grammar rejected.
var ErrBadHeader = errors.New("malformed chunk header")

// header is the root grammar node: {lang label?, key=value, ...}.
type header struct {
	Lang    string   `"{" @Ident`
	Label   string   `@Ident?`
	Options []option `("," @@)* "}"`
}

// option is one chunk option. A bare word (no "=") is tolerated because
// knitr accepts positional arguments beyond the label.
type option struct {
	Key   string `@Ident`
	Value *expr  `("=" @@)?`
}

// expr is a sequence of atoms forming an option value. It stops at a
// depth-zero comma so option boundaries survive values like c(1, 2).
type expr struct {
	Atoms []atom `@@+`
}

// atom is a single value token or a parenthesised group.
type atom struct {
	Str   *string `  @String`
	Num   *string `| @Number`
	Ident *string `| @Ident`
	Op    *string `| @Op`
	Group *group  `| @@`
}

// group is a balanced ( ) or [ ] region; commas and equals inside it are
// plain tokens, which is how c(a = 1, b = 2) stays a single value.
type group struct {
	Open  string `@("(" | "[")`
	Items []item `@@*`
	Close string `@(")" | "]")`
}

type item struct {
	Sep  *string `  @("," | "=")`
	Atom *atom   `| @@`
}

var chunkLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Number", Pattern: `\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`},
	// Hyphens and dots are part of chunk labels (my-plot, fig.cap).
	{Name: "Ident", Pattern: `[A-Za-z][-A-Za-z0-9_.]*`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Op", Pattern: `[-+*/:$^<>!&|~?%@]+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

var chunkParser = participle.MustBuild[header](
	participle.Lexer(chunkLexer),
	participle.Elide("Whitespace"),
)

// KeyValue is one chunk option with its raw (unevaluated) value text.
type KeyValue struct {
	Key   string
	Value string
}

// Options is the decoded form of a chunk header.
type Options struct {
	Language string
	Label    string
	FigCap   string // unquoted caption, empty when absent
	Echo     bool   // knitr default TRUE
	Eval     bool   // knitr default TRUE
	Include  bool   // knitr default TRUE
	Raw      []KeyValue
}

// Parse decodes a chunk header of the form {r label, key=value, ...}.
func Parse(info string) (*Options, error) {
	h, err := chunkParser.ParseString("", strings.TrimSpace(info))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	opts := &Options{
		Language: h.Lang,
		Label:    h.Label,
		Echo:     true,
		Eval:     true,
		Include:  true,
	}

	for _, o := range h.Options {
		raw := ""
		if o.Value != nil {
			raw = o.Value.text()
		}
		opts.Raw = append(opts.Raw, KeyValue{Key: o.Key, Value: raw})

		switch o.Key {
		case "fig.cap":
			if o.Value != nil {
				if s := o.Value.stringLiteral(); s != "" {
					opts.FigCap = Unquote(s)
				} else {
					opts.FigCap = raw
				}
			}
		case "echo":
			opts.Echo = boolOption(o.Value, opts.Echo)
		case "eval":
			opts.Eval = boolOption(o.Value, opts.Eval)
		case "include":
			opts.Include = boolOption(o.Value, opts.Include)
		}
	}

	return opts, nil
}

// boolOption decodes TRUE/FALSE/T/F literals; any other expression keeps
// the knitr default, matching how an unevaluable option behaves here.
func boolOption(v *expr, def bool) bool {
	if v == nil || len(v.Atoms) != 1 || v.Atoms[0].Ident == nil {
		return def
	}
	switch *v.Atoms[0].Ident {
	case "TRUE", "T":
		return true
	case "FALSE", "F":
		return false
	}
	return def
}

// stringLiteral returns the quoted token when the expression is exactly one
// string literal, or "".
func (e *expr) stringLiteral() string {
	if len(e.Atoms) == 1 && e.Atoms[0].Str != nil {
		return *e.Atoms[0].Str
	}
	return ""
}

// text reconstructs the option value for diagnostics and the Raw list.
func (e *expr) text() string {
	var b strings.Builder
	for _, a := range e.Atoms {
		a.write(&b)
	}
	return b.String()
}

func (a *atom) write(b *strings.Builder) {
	switch {
	case a.Str != nil:
		b.WriteString(*a.Str)
	case a.Num != nil:
		b.WriteString(*a.Num)
	case a.Ident != nil:
		b.WriteString(*a.Ident)
	case a.Op != nil:
		b.WriteString(*a.Op)
	case a.Group != nil:
		b.WriteString(a.Group.Open)
		for _, it := range a.Group.Items {
			if it.Sep != nil {
				b.WriteString(*it.Sep)
				if *it.Sep == "," {
					b.WriteString(" ")
				}
				continue
			}
			it.Atom.write(b)
		}
		b.WriteString(a.Group.Close)
	}
}

// Unquote strips matching single or double quotes and resolves backslash
// escapes the way R string literals do for the common cases.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}
	body := s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// IsChunkHeader reports whether a fence info string is a braced knitr
// header rather than a plain language name.
func IsChunkHeader(info string) bool {
	return strings.HasPrefix(strings.TrimSpace(info), "{")
}
