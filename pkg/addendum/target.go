package addendum

import "fmt"

// TargetKind classifies where an annotation is being constructed
type TargetKind int

const (
	ClassTarget TargetKind = iota
	MethodTarget
	PropertyTarget
	// NestedTarget marks an annotation built as a parameter value of another
	// annotation. It carries no identity.
	NestedTarget
)

// String returns the string representation of the target kind
func (k TargetKind) String() string {
	switch k {
	case ClassTarget:
		return "class"
	case MethodTarget:
		return "method"
	case PropertyTarget:
		return "property"
	case NestedTarget:
		return "nested"
	default:
		return "unknown"
	}
}

// Placement keywords accepted by the Target meta-annotation
const (
	PlaceClass    = "class"
	PlaceMethod   = "method"
	PlaceProperty = "property"
	// PlaceMeta is satisfied by a class that is itself an annotation type
	PlaceMeta   = "meta"
	PlaceNested = "nested"
)

var placements = map[string]struct{}{
	PlaceClass:    {},
	PlaceMethod:   {},
	PlaceProperty: {},
	PlaceMeta:     {},
	PlaceNested:   {},
}

// Target identifies the site an annotation is attached to
type Target struct {
	Kind   TargetKind
	Class  string
	Member string
}

// OnClass returns the target for a class
func OnClass(class string) Target {
	return Target{Kind: ClassTarget, Class: class}
}

// OnMethod returns the target for a method of class
func OnMethod(class, method string) Target {
	return Target{Kind: MethodTarget, Class: class, Member: method}
}

// OnProperty returns the target for a property of class
func OnProperty(class, property string) Target {
	return Target{Kind: PropertyTarget, Class: class, Member: property}
}

// Nested returns the identity-less target of annotation parameter values
func Nested() Target {
	return Target{Kind: NestedTarget}
}

// QualifiedName returns C, C::m or C::$p. Nested targets have no name.
func (t Target) QualifiedName() string {
	switch t.Kind {
	case ClassTarget:
		return t.Class
	case MethodTarget:
		return t.Class + "::" + t.Member
	case PropertyTarget:
		return t.Class + "::$" + t.Member
	default:
		return ""
	}
}

func (t Target) String() string {
	if t.Kind == NestedTarget {
		return "nested annotation"
	}
	return fmt.Sprintf("%s %s", t.Kind, t.QualifiedName())
}

// checkTargetKeywords rejects Target annotations naming unknown placements
func checkTargetKeywords(inst *Instance, _ Target) error {
	keywords, err := placementKeywords(inst.Value())
	if err != nil {
		return err
	}
	for _, kw := range keywords {
		if _, ok := placements[kw]; !ok {
			return fmt.Errorf("unknown placement '%s', expected one of class, method, property, meta, nested", kw)
		}
	}
	return nil
}

// placementKeywords flattens a Target value into its keywords
func placementKeywords(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			kws, err := placementKeywords(item)
			if err != nil {
				return nil, err
			}
			out = append(out, kws...)
		}
		return out, nil
	case []string:
		return v, nil
	default:
		s, err := ConvertToString(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}
