package addendum

import (
	"sort"
)

// Built-in annotation type names
const (
	// BaseType is the root every annotation type extends. It can never be
	// ignored.
	BaseType = "Annotation"
	// TargetType restricts the placements allowed for the type it annotates
	TargetType = "Annotation_Target"
	// AliasType declares the external alias of an annotation type
	AliasType = "Annotation_Alias"
	// NamespaceType declares the namespace an aliased annotation type answers to
	NamespaceType = "Annotation_Namespace"
)

// ValueProperty is the reserved property receiving positional parameters
const ValueProperty = "value"

// Annotation is a marker that Go structs may embed to document that they are
// annotation types. Embedding it has no effect on binding.
type Annotation struct{}

// CheckFunc is a type-specific constraint run after the target constraint
// check succeeded.
type CheckFunc func(inst *Instance, target Target) error

// Type describes one annotation type: its identity, declared properties and
// how instances of it are constructed.
type Type struct {
	name       string
	extends    string
	properties []string
	declared   map[string]struct{}
	doc        string
	check      CheckFunc
	binding    *structBinding // nil for dynamic types
}

// Name returns the fully qualified type name
func (t *Type) Name() string { return t.name }

// Extends returns the name of the parent type, empty for the base type
func (t *Type) Extends() string { return t.extends }

// Doc returns the doc text holding the type's meta-annotations
func (t *Type) Doc() string { return t.doc }

// Properties returns the declared property names, sorted
func (t *Type) Properties() []string {
	out := make([]string, len(t.properties))
	copy(out, t.properties)
	return out
}

// HasProperty reports whether name can be bound on instances of this type.
// The reserved value property is always declared.
func (t *Type) HasProperty(name string) bool {
	if name == ValueProperty {
		return true
	}
	_, ok := t.declared[name]
	return ok
}

// Typed reports whether instances are backed by a Go struct
func (t *Type) Typed() bool { return t.binding != nil }

func (t *Type) String() string { return t.name }

// TypeOption configures a type during registration
type TypeOption func(*Type)

// Extends sets the parent annotation type. Types extend BaseType by default.
func Extends(parent string) TypeOption {
	return func(t *Type) {
		t.extends = parent
	}
}

// WithProperties declares additional property names
func WithProperties(names ...string) TypeOption {
	return func(t *Type) {
		for _, name := range names {
			t.declare(name)
		}
	}
}

// WithDoc sets the doc text used when the type's own class is reflected,
// e.g. `@Target("method")`. A class with the same name known to the engine's
// Provider takes precedence.
func WithDoc(doc string) TypeOption {
	return func(t *Type) {
		t.doc = doc
	}
}

// WithCheck installs a type-specific constraint check
func WithCheck(check CheckFunc) TypeOption {
	return func(t *Type) {
		t.check = check
	}
}

func newType(name string) *Type {
	return &Type{
		name:     name,
		extends:  BaseType,
		declared: make(map[string]struct{}),
	}
}

func (t *Type) declare(name string) {
	if name == "" || name == ValueProperty {
		return
	}
	if _, ok := t.declared[name]; ok {
		return
	}
	t.declared[name] = struct{}{}
	t.properties = append(t.properties, name)
	sort.Strings(t.properties)
}
