package addendum

import "github.com/toyz/addendum/internal/docparser"

// Parsed annotation data shared with the doc comment parser
type (
	Entry     = docparser.Entry
	Param     = docparser.Param
	Value     = docparser.Value
	ValueKind = docparser.ValueKind
	Ident     = docparser.Ident
)

// Value kinds
const (
	LiteralValue = docparser.LiteralValue
	ListValue    = docparser.ListValue
	NestedValue  = docparser.NestedValue
)

// Parser turns raw doc text into annotation entries, preserving source order
// of the declarations and of their positional parameters.
type Parser interface {
	Parse(doc string) ([]Entry, error)
}

// NewDocParser returns the default participle based doc comment parser
func NewDocParser() Parser {
	return docparser.NewParser()
}

// ParserFunc adapts a plain function to the Parser interface
type ParserFunc func(doc string) ([]Entry, error)

// Parse calls f(doc)
func (f ParserFunc) Parse(doc string) ([]Entry, error) { return f(doc) }
