package addendum

import "strings"

// NamespaceResolver resolves tags written as "namespace:alias". Annotation
// types opt in by carrying an Alias meta-annotation, and optionally a
// Namespace meta-annotation; without one they answer to the empty namespace.
//
//	// @Namespace("T")
//	// @Alias("Other")
//	type Test2 struct{}
//
// makes @T:Other resolve to Test2. A tag without a namespace that equals a
// registered type name resolves to that type directly.
type NamespaceResolver struct {
	aliasTag     string
	namespaceTag string
	seed         map[string]string
	namespaces   map[string]map[string]string
}

// NamespaceOption configures a NamespaceResolver
type NamespaceOption func(*NamespaceResolver)

// WithAliasTag sets the tag of the meta-annotation declaring an alias
func WithAliasTag(tag string) NamespaceOption {
	return func(r *NamespaceResolver) {
		r.aliasTag = tag
	}
}

// WithNamespaceTag sets the tag of the meta-annotation declaring a namespace
func WithNamespaceTag(tag string) NamespaceOption {
	return func(r *NamespaceResolver) {
		r.namespaceTag = tag
	}
}

// WithBuiltin maps an un-namespaced tag to a type without scanning
func WithBuiltin(tag, typeName string) NamespaceOption {
	return func(r *NamespaceResolver) {
		r.seed[tag] = typeName
	}
}

// NewNamespaceResolver creates a resolver whose cache is seeded with the
// built-in meta-annotations Target, Alias and Namespace.
func NewNamespaceResolver(opts ...NamespaceOption) *NamespaceResolver {
	r := &NamespaceResolver{
		aliasTag:     "Alias",
		namespaceTag: "Namespace",
		seed: map[string]string{
			"Target":    TargetType,
			"Alias":     AliasType,
			"Namespace": NamespaceType,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ResetCache()
	return r
}

// Resolve implements Resolver
func (r *NamespaceResolver) Resolve(scope Scope, tag string) (string, error) {
	namespace, key := "", tag
	if i := strings.Index(tag, ":"); i >= 0 {
		namespace, key = tag[:i], tag[i+1:]
	}

	if name, ok := r.namespaces[namespace][key]; ok {
		return name, nil
	}

	if namespace == "" {
		for _, t := range scope.Types() {
			if t.Name() == tag {
				r.remember("", tag, t.Name())
				return t.Name(), nil
			}
		}
	}

	for _, t := range scope.Types() {
		// Reflecting a type under construction would re-enter it
		if scope.Constructing(t.Name()) {
			continue
		}
		meta, err := scope.ClassAnnotations(t.Name())
		if err != nil {
			return "", err
		}
		alias, err := meta.Annotation(r.aliasTag)
		if err != nil {
			return "", err
		}
		if alias == nil {
			continue
		}
		targetNamespace := ""
		ns, err := meta.Annotation(r.namespaceTag)
		if err != nil {
			return "", err
		}
		if ns != nil {
			targetNamespace = ns.GetString(ValueProperty)
		}
		targetAlias := alias.GetString(ValueProperty)
		r.remember(targetNamespace, targetAlias, t.Name())
		if namespace == targetNamespace && key == targetAlias {
			return t.Name(), nil
		}
	}

	return "", &UnresolvedTagError{Tag: tag}
}

// ResetCache implements CacheResetter; the built-in seed is kept
func (r *NamespaceResolver) ResetCache() {
	r.namespaces = map[string]map[string]string{"": {}}
	for tag, name := range r.seed {
		r.namespaces[""][tag] = name
	}
}

func (r *NamespaceResolver) remember(namespace, alias, name string) {
	if r.namespaces[namespace] == nil {
		r.namespaces[namespace] = make(map[string]string)
	}
	r.namespaces[namespace][alias] = name
}
