package docparser

import "fmt"

// ValueKind identifies the shape of a parameter value
type ValueKind int

const (
	LiteralValue ValueKind = iota
	ListValue
	NestedValue
)

// String returns the string representation of the value kind
func (k ValueKind) String() string {
	switch k {
	case LiteralValue:
		return "literal"
	case ListValue:
		return "list"
	case NestedValue:
		return "nested"
	default:
		return "unknown"
	}
}

// Ident is a bare identifier used as a parameter value, e.g. @Mode(Singleton)
type Ident string

// Value is a single parameter value: a literal, a list of values or a nested
// annotation entry.
type Value struct {
	Kind    ValueKind
	Literal interface{} // string, int64, float64, bool, Ident or nil
	List    []Value
	Nested  *Entry
}

// Literal wraps a scalar into a Value
func Literal(v interface{}) Value {
	return Value{Kind: LiteralValue, Literal: v}
}

// List wraps values into a list Value
func List(values ...Value) Value {
	return Value{Kind: ListValue, List: values}
}

// Nested wraps an entry into a Value
func Nested(entry Entry) Value {
	return Value{Kind: NestedValue, Nested: &entry}
}

// String renders the value roughly as it would appear in a doc comment
func (v Value) String() string {
	switch v.Kind {
	case ListValue:
		out := "{"
		for i, item := range v.List {
			if i > 0 {
				out += ", "
			}
			out += item.String()
		}
		return out + "}"
	case NestedValue:
		if v.Nested == nil {
			return "<nil>"
		}
		return v.Nested.String()
	default:
		switch lit := v.Literal.(type) {
		case string:
			return fmt.Sprintf("%q", lit)
		case nil:
			return "null"
		default:
			return fmt.Sprintf("%v", lit)
		}
	}
}

// Param is one parameter of an annotation. An empty Key marks a positional
// parameter.
type Param struct {
	Key   string
	Value Value
}

// Positional reports whether the parameter was given without a key
func (p Param) Positional() bool {
	return p.Key == ""
}

// Entry is a single parsed annotation declaration: its tag and its parameters
// in source order.
type Entry struct {
	Tag    string
	Params []Param
	Line   int // 1-based line within the doc text, 0 when unknown
}

// NewEntry builds an entry from a tag and parameters
func NewEntry(tag string, params ...Param) Entry {
	return Entry{Tag: tag, Params: params}
}

// String renders the entry as @Tag(params...)
func (e Entry) String() string {
	out := "@" + e.Tag + "("
	for i, p := range e.Params {
		if i > 0 {
			out += ", "
		}
		if !p.Positional() {
			out += p.Key + "="
		}
		out += p.Value.String()
	}
	return out + ")"
}

// SyntaxError is returned when an annotation declaration cannot be parsed
type SyntaxError struct {
	Msg    string
	Line   int
	Column int
	Text   string // offending declaration
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: syntax error: %s in %q", e.Line, e.Column, e.Msg, e.Text)
}
