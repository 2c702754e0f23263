package addendum

// Collection is the set of annotation instances built for one target,
// grouped by resolved type name. Groups keep the order in which their type
// first appeared in the doc text; instances within a group keep parse order.
type Collection struct {
	target  Target
	order   []string
	groups  map[string][]*Instance
	parsed  []*Instance
	resolve func(tag string) (string, error)
}

func newCollection(target Target, resolve func(string) (string, error)) *Collection {
	return &Collection{
		target:  target,
		groups:  make(map[string][]*Instance),
		resolve: resolve,
	}
}

func (c *Collection) add(inst *Instance) {
	name := inst.TypeName()
	if _, ok := c.groups[name]; !ok {
		c.order = append(c.order, name)
	}
	c.groups[name] = append(c.groups[name], inst)
	c.parsed = append(c.parsed, inst)
}

// Target returns the site the collection was built for
func (c *Collection) Target() Target {
	return c.target
}

// Has reports whether an instance of the type tag resolves to is present
func (c *Collection) Has(tag string) (bool, error) {
	name, err := c.resolve(tag)
	if err != nil {
		return false, err
	}
	return len(c.groups[name]) > 0, nil
}

// Get returns the last instance of the type tag resolves to, or nil when the
// collection holds none. The last declaration of a duplicated type wins.
func (c *Collection) Get(tag string) (*Instance, error) {
	name, err := c.resolve(tag)
	if err != nil {
		return nil, err
	}
	return c.last(name), nil
}

// Annotation is an alias for Get
func (c *Collection) Annotation(tag string) (*Instance, error) {
	return c.Get(tag)
}

// All returns the last instance of every type, in group order
func (c *Collection) All() []*Instance {
	out := make([]*Instance, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.last(name))
	}
	return out
}

// AllIncludingDuplicates returns every instance. A non-empty restriction is
// resolved like a tag and keeps only instances of exactly that type.
func (c *Collection) AllIncludingDuplicates(restriction string) ([]*Instance, error) {
	if restriction != "" {
		name, err := c.resolve(restriction)
		if err != nil {
			return nil, err
		}
		group := c.groups[name]
		out := make([]*Instance, len(group))
		copy(out, group)
		return out, nil
	}

	var out []*Instance
	for _, name := range c.order {
		out = append(out, c.groups[name]...)
	}
	return out, nil
}

// Len returns the number of distinct types in the collection
func (c *Collection) Len() int {
	return len(c.order)
}

// TypeNames returns the type names present, in group order
func (c *Collection) TypeNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Collection) last(name string) *Instance {
	group := c.groups[name]
	if len(group) == 0 {
		return nil
	}
	return group[len(group)-1]
}

// lastSubtypeOf returns the last declared instance whose type is ancestor or
// extends it
func (c *Collection) lastSubtypeOf(reg *Registry, ancestor string) *Instance {
	for i := len(c.parsed) - 1; i >= 0; i-- {
		if reg.IsSubtype(c.parsed[i].TypeName(), ancestor) {
			return c.parsed[i]
		}
	}
	return nil
}
