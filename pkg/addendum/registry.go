package addendum

import (
	"fmt"
	"sync"
)

// Registry holds every known annotation type, keyed by fully qualified name.
//
// The registry supports incremental discovery: types may be added at any time
// and the cached type listing is rebuilt on the next AllTypes call. Resolvers
// keep their own caches, so tags resolved before a registration keep their
// old answer until the engine's resolver cache is cleared.
type Registry struct {
	mu       sync.RWMutex
	types    map[string]*Type
	order    []string
	snapshot []*Type
}

// NewRegistry creates a registry holding the built-in types: the base type and
// the Target, Alias and Namespace meta-annotations.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]*Type)}

	base := newType(BaseType)
	base.extends = ""
	r.add(base)

	target := newType(TargetType)
	target.check = checkTargetKeywords
	r.add(target)
	r.add(newType(AliasType))
	r.add(newType(NamespaceType))
	return r
}

// Define registers a dynamic annotation type whose instances hold their
// property values in a map.
func (r *Registry) Define(name string, opts ...TypeOption) (*Type, error) {
	t := newType(name)
	for _, opt := range opts {
		opt(t)
	}
	if err := r.register(t); err != nil {
		return nil, err
	}
	return t, nil
}

// MustDefine is like Define but panics on error
func (r *Registry) MustDefine(name string, opts ...TypeOption) *Type {
	t, err := r.Define(name, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Register registers a typed annotation backed by the struct T. Exported
// fields become properties named by their `annotation` tag, or by the field
// name with a lowercase first letter. A field tagged `annotation:"value"` or
// named Value receives positional parameters.
func Register[T any](r *Registry, name string, opts ...TypeOption) (*Type, error) {
	binding, err := newStructBinding[T]()
	if err != nil {
		return nil, &RegistrationError{Type: name, Msg: err.Error()}
	}
	t := newType(name)
	t.binding = binding
	for _, prop := range binding.properties() {
		t.declare(prop)
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := r.register(t); err != nil {
		return nil, err
	}
	return t, nil
}

// MustRegister is like Register but panics on error
func MustRegister[T any](r *Registry, name string, opts ...TypeOption) *Type {
	t, err := Register[T](r, name, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the type registered under name
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]
	return t, ok
}

// IsRegistered checks if a type name is registered
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// AllTypes returns every registered type, the base type included, in
// registration order. The listing is cached until the next registration.
func (r *Registry) AllTypes() []*Type {
	r.mu.RLock()
	snapshot := r.snapshot
	r.mu.RUnlock()
	if snapshot != nil {
		return snapshot
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		r.snapshot = make([]*Type, 0, len(r.order))
		for _, name := range r.order {
			r.snapshot = append(r.snapshot, r.types[name])
		}
	}
	return r.snapshot
}

// IsSubtype reports whether name equals ancestor or extends it, directly or
// transitively. Unregistered names are subtypes of nothing.
func (r *Registry) IsSubtype(name, ancestor string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name != "" {
		if name == ancestor {
			return true
		}
		t, ok := r.types[name]
		if !ok {
			return false
		}
		name = t.extends
	}
	return false
}

// IsAnnotation reports whether name is a registered annotation type
func (r *Registry) IsAnnotation(name string) bool {
	return r.IsSubtype(name, BaseType)
}

func (r *Registry) register(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.name == "" {
		return &RegistrationError{Msg: "type name cannot be empty"}
	}
	if _, exists := r.types[t.name]; exists {
		return &RegistrationError{Type: t.name, Msg: "type is already registered"}
	}
	if t.extends == "" {
		return &RegistrationError{Type: t.name, Msg: "only the base type may omit a parent"}
	}
	if _, ok := r.types[t.extends]; !ok {
		return &RegistrationError{Type: t.name, Msg: fmt.Sprintf("parent type '%s' is not registered", t.extends)}
	}

	r.add(t)
	return nil
}

// add stores t; callers hold the write lock or own r exclusively
func (r *Registry) add(t *Type) {
	r.types[t.name] = t
	r.order = append(r.order, t.name)
	r.snapshot = nil
}
