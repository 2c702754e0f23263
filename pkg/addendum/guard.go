package addendum

// CreationStack tracks the annotation types currently under construction on
// one engine. Each Engine owns exactly one; it is never shared.
type CreationStack struct {
	active map[string]struct{}
	order  []string
}

func newCreationStack() *CreationStack {
	return &CreationStack{active: make(map[string]struct{})}
}

// Contains reports whether a type is mid-construction
func (s *CreationStack) Contains(name string) bool {
	_, ok := s.active[name]
	return ok
}

// Len returns the number of types under construction
func (s *CreationStack) Len() int {
	return len(s.order)
}

// Snapshot returns the types under construction, outermost first
func (s *CreationStack) Snapshot() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *CreationStack) push(name string) error {
	if s.Contains(name) {
		return &CircularReferenceError{Type: name}
	}
	s.active[name] = struct{}{}
	s.order = append(s.order, name)
	return nil
}

func (s *CreationStack) pop(name string) {
	delete(s.active, name)
	for i := len(s.order) - 1; i >= 0; i-- {
		if s.order[i] == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
