package addendum

import "strings"

// Scope is the engine state a Resolver may consult while resolving a tag. It
// is only valid for the duration of the Resolve call it was passed to.
type Scope interface {
	// Types lists every annotation type known to the engine
	Types() []*Type
	// Constructing reports whether a type is mid-construction on the engine
	Constructing(typeName string) bool
	// ClassAnnotations builds the class-level annotations of an annotation
	// type, i.e. its meta-annotations.
	ClassAnnotations(typeName string) (*Collection, error)
}

// Resolver maps a tag as written in a doc comment to an annotation type name.
// A resolver is owned by one engine and is always called with that engine's
// lock held, so implementations need no locking of their own.
type Resolver interface {
	Resolve(scope Scope, tag string) (string, error)
}

// CacheResetter is implemented by resolvers that cache their results
type CacheResetter interface {
	ResetCache()
}

// DefaultResolver matches a tag against the full type name or against the
// final underscore-delimited segment of it: "Route" resolves to "Web_Route".
//
// A tag matching no type is passed through unchanged as a fully qualified
// name; construction then reports UnknownType if no such type exists. A tag
// matching several types is ambiguous and fails with UnresolvedTag.
type DefaultResolver struct {
	cache map[string]string
}

// NewDefaultResolver creates a suffix matching resolver with an empty cache
func NewDefaultResolver() *DefaultResolver {
	return &DefaultResolver{cache: make(map[string]string)}
}

// Resolve implements Resolver
func (r *DefaultResolver) Resolve(scope Scope, tag string) (string, error) {
	if name, ok := r.cache[tag]; ok {
		return name, nil
	}

	var matching []string
	for _, t := range scope.Types() {
		if matchesTag(t.Name(), tag) {
			matching = append(matching, t.Name())
		}
	}

	var result string
	switch len(matching) {
	case 0:
		result = tag
	case 1:
		result = matching[0]
	default:
		return "", &UnresolvedTagError{Tag: tag, Candidates: matching}
	}

	r.cache[tag] = result
	return result, nil
}

// ResetCache implements CacheResetter
func (r *DefaultResolver) ResetCache() {
	r.cache = make(map[string]string)
}

func matchesTag(name, tag string) bool {
	return name == tag || strings.HasSuffix(name, "_"+tag)
}
