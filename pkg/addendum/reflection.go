package addendum

// Provider supplies the reflectable program elements annotations attach to
type Provider interface {
	// Class returns the class registered under name
	Class(name string) (*ClassInfo, bool)
}

// ClassInfo describes one class as seen by a Provider
type ClassInfo struct {
	Name       string
	Doc        string
	Methods    []MemberInfo
	Properties []MemberInfo
}

// MemberInfo describes a method or property of a class
type MemberInfo struct {
	Name string
	Doc  string
}

// Method returns the method named name
func (c *ClassInfo) Method(name string) (MemberInfo, bool) {
	return findMember(c.Methods, name)
}

// Property returns the property named name
func (c *ClassInfo) Property(name string) (MemberInfo, bool) {
	return findMember(c.Properties, name)
}

func findMember(members []MemberInfo, name string) (MemberInfo, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	return MemberInfo{}, false
}

// annotated is the query surface shared by every handle
type annotated struct {
	annotations *Collection
}

// Annotation returns the last annotation whose type tag resolves to, or nil
func (a annotated) Annotation(tag string) (*Instance, error) {
	return a.annotations.Get(tag)
}

// HasAnnotation reports whether an annotation of the type tag resolves to is
// present
func (a annotated) HasAnnotation(tag string) (bool, error) {
	return a.annotations.Has(tag)
}

// Annotations returns the last annotation of each type
func (a annotated) Annotations() []*Instance {
	return a.annotations.All()
}

// AllAnnotations returns every annotation, duplicates included, optionally
// restricted to one exact type
func (a annotated) AllAnnotations(restriction string) ([]*Instance, error) {
	return a.annotations.AllIncludingDuplicates(restriction)
}

// Collection returns the underlying annotation collection
func (a annotated) Collection() *Collection {
	return a.annotations
}

// Class is an annotated class handle returned by Engine.Reflect
type Class struct {
	annotated
	engine *Engine
	info   *ClassInfo
}

// Name returns the class name
func (c *Class) Name() string { return c.info.Name }

// Info returns the provider description of the class
func (c *Class) Info() *ClassInfo { return c.info }

// IsAnnotation reports whether the class is itself an annotation type
func (c *Class) IsAnnotation() bool {
	return c.engine.registry.IsAnnotation(c.info.Name)
}

// Method reflects one method of the class
func (c *Class) Method(name string) (*Method, error) {
	member, ok := c.info.Method(name)
	if !ok {
		return nil, &NotFoundError{Class: c.info.Name, Member: name}
	}
	return c.engine.reflectMethod(c, member)
}

// Methods reflects every method of the class, in provider order
func (c *Class) Methods() ([]*Method, error) {
	out := make([]*Method, 0, len(c.info.Methods))
	for _, member := range c.info.Methods {
		m, err := c.engine.reflectMethod(c, member)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Property reflects one property of the class
func (c *Class) Property(name string) (*Property, error) {
	member, ok := c.info.Property(name)
	if !ok {
		return nil, &NotFoundError{Class: c.info.Name, Member: name}
	}
	return c.engine.reflectProperty(c, member)
}

// Properties reflects every property of the class, in provider order
func (c *Class) Properties() ([]*Property, error) {
	out := make([]*Property, 0, len(c.info.Properties))
	for _, member := range c.info.Properties {
		p, err := c.engine.reflectProperty(c, member)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Method is an annotated method handle
type Method struct {
	annotated
	class *Class
	name  string
}

// Name returns the method name
func (m *Method) Name() string { return m.name }

// DeclaringClass returns the class declaring the method
func (m *Method) DeclaringClass() *Class { return m.class }

// QualifiedName returns Class::method
func (m *Method) QualifiedName() string {
	return OnMethod(m.class.Name(), m.name).QualifiedName()
}

// Property is an annotated property handle
type Property struct {
	annotated
	class *Class
	name  string
}

// Name returns the property name
func (p *Property) Name() string { return p.name }

// DeclaringClass returns the class declaring the property
func (p *Property) DeclaringClass() *Class { return p.class }

// QualifiedName returns Class::$property
func (p *Property) QualifiedName() string {
	return OnProperty(p.class.Name(), p.name).QualifiedName()
}
