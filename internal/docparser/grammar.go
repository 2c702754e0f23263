package docparser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// annotationLexer tokenizes a single annotation declaration. Anything the
// grammar does not know about becomes an Other token so free text trailing a
// declaration never fails lexing.
var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Float", Pattern: `-?\d+\.\d+(?:[eE][-+]?\d+)?`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Name", Pattern: `[a-zA-Z_\\][a-zA-Z0-9_\\]*(?:[.:][a-zA-Z_\\][a-zA-Z0-9_\\]*)*`},
	{Name: "Punct", Pattern: `[@(){},=]`},
	{Name: "Other", Pattern: `.`},
})

// segmentNode is the root of one extracted declaration segment
type segmentNode struct {
	Annotations []*annotationNode `parser:"@@+"`
}

type annotationNode struct {
	Pos  lexer.Position
	Tag  string     `parser:"'@' @Name"`
	Args []*argNode `parser:"( '(' ( @@ ( ',' @@ )* ','? )? ')' )?"`
}

type argNode struct {
	Key   string     `parser:"( @Name '=' )?"`
	Value *valueNode `parser:"@@"`
}

type valueNode struct {
	Nested *annotationNode `parser:"  @@"`
	List   *listNode       `parser:"| @@"`
	String *string         `parser:"| @String"`
	Float  *float64        `parser:"| @Float"`
	Int    *int64          `parser:"| @Int"`
	Bool   *boolean        `parser:"| @('true' | 'false')"`
	Null   bool            `parser:"| @'null'"`
	Ident  *string         `parser:"| @Name"`
}

type listNode struct {
	Items []*valueNode `parser:"'{' ( @@ ( ',' @@ )* ','? )? '}'"`
}

type boolean bool

func (b *boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

func (n *annotationNode) entry(lineOffset int) (Entry, error) {
	entry := Entry{Tag: n.Tag, Line: lineOffset + n.Pos.Line}
	for _, arg := range n.Args {
		value, err := arg.Value.value(lineOffset)
		if err != nil {
			return Entry{}, err
		}
		entry.Params = append(entry.Params, Param{Key: arg.Key, Value: value})
	}
	return entry, nil
}

func (n *valueNode) value(lineOffset int) (Value, error) {
	switch {
	case n.Nested != nil:
		nested, err := n.Nested.entry(lineOffset)
		if err != nil {
			return Value{}, err
		}
		return Nested(nested), nil
	case n.List != nil:
		items := make([]Value, 0, len(n.List.Items))
		for _, item := range n.List.Items {
			v, err := item.value(lineOffset)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case n.String != nil:
		s, err := unquote(*n.String)
		if err != nil {
			return Value{}, err
		}
		return Literal(s), nil
	case n.Float != nil:
		return Literal(*n.Float), nil
	case n.Int != nil:
		return Literal(*n.Int), nil
	case n.Bool != nil:
		return Literal(bool(*n.Bool)), nil
	case n.Null:
		return Literal(nil), nil
	case n.Ident != nil:
		return Literal(Ident(*n.Ident)), nil
	}
	return Literal(nil), nil
}

// unquote handles both double and single quoted strings with Go escapes
func unquote(s string) (string, error) {
	if len(s) < 2 {
		return "", strconv.ErrSyntax
	}
	quote := s[0]
	body := s[1 : len(s)-1]
	var out strings.Builder
	for len(body) > 0 {
		r, multibyte, tail, err := strconv.UnquoteChar(body, quote)
		if err != nil {
			return "", err
		}
		if multibyte || r < utf8.RuneSelf {
			out.WriteRune(r)
		} else {
			out.WriteByte(byte(r))
		}
		body = tail
	}
	return out.String(), nil
}
