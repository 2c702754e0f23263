package routing

import (
	"net/http"
	"strings"
)

// PartType represents the type of a path part
type PartType int

const (
	StaticPart PartType = iota
	ParameterPart
	WildcardPart
)

// Part is a single part of a route path
type Part struct {
	Type  PartType
	Value string // literal text for static parts, the name for parameters
}

// Path is a route path using {name} parameters and a trailing {*} wildcard,
// e.g. /users/{id}/files/{*}
type Path string

// Parts splits the path into static, parameter and wildcard parts
func (p Path) Parts() []Part {
	path := string(p)
	var parts []Part

	i := 0
	for i < len(path) {
		if path[i] != '{' {
			start := i
			for i < len(path) && path[i] != '{' {
				i++
			}
			parts = append(parts, Part{Type: StaticPart, Value: path[start:i]})
			continue
		}

		end := strings.IndexByte(path[i:], '}')
		if end < 0 {
			// Unterminated, keep the rest as static text
			parts = append(parts, Part{Type: StaticPart, Value: path[i:]})
			break
		}
		name := path[i+1 : i+end]
		if name == "*" {
			parts = append(parts, Part{Type: WildcardPart, Value: "*"})
		} else {
			parts = append(parts, Part{Type: ParameterPart, Value: name})
		}
		i += end + 1
	}
	return parts
}

// Params returns the parameter names in order
func (p Path) Params() []string {
	var names []string
	for _, part := range p.Parts() {
		if part.Type == ParameterPart {
			names = append(names, part.Value)
		}
	}
	return names
}

// Format renders the path in a router's syntax. param formats a parameter
// name; wildcard replaces {*}.
func (p Path) Format(param func(name string) string, wildcard string) string {
	var b strings.Builder
	for _, part := range p.Parts() {
		switch part.Type {
		case ParameterPart:
			b.WriteString(param(part.Value))
		case WildcardPart:
			b.WriteString(wildcard)
		default:
			b.WriteString(part.Value)
		}
	}
	return b.String()
}

// ColonParams formats a parameter the way gin, echo and fiber expect
func ColonParams(name string) string {
	return ":" + name
}

// WithParams exposes router path parameters through r.PathValue
func WithParams(r *http.Request, params map[string]string) *http.Request {
	for name, value := range params {
		r.SetPathValue(name, value)
	}
	return r
}
