package source

import (
	"sort"
	"sync"

	"github.com/toyz/addendum/pkg/addendum"
)

// Memory is a Provider whose classes are declared programmatically
type Memory struct {
	mu      sync.RWMutex
	classes map[string]*addendum.ClassInfo
}

// NewMemory creates an empty in-memory provider
func NewMemory() *Memory {
	return &Memory{classes: make(map[string]*addendum.ClassInfo)}
}

// ClassBuilder adds members to a class declared on a Memory provider
type ClassBuilder struct {
	m    *Memory
	name string
}

// AddClass declares a class with its doc text, replacing any previous class
// of the same name
func (m *Memory) AddClass(name, doc string) *ClassBuilder {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.classes[name] = &addendum.ClassInfo{Name: name, Doc: doc}
	return &ClassBuilder{m: m, name: name}
}

// Method declares a method of the class
func (b *ClassBuilder) Method(name, doc string) *ClassBuilder {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	info := b.m.classes[b.name]
	info.Methods = append(info.Methods, addendum.MemberInfo{Name: name, Doc: doc})
	return b
}

// Property declares a property of the class
func (b *ClassBuilder) Property(name, doc string) *ClassBuilder {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	info := b.m.classes[b.name]
	info.Properties = append(info.Properties, addendum.MemberInfo{Name: name, Doc: doc})
	return b
}

// Class implements addendum.Provider
func (m *Memory) Class(name string) (*addendum.ClassInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.classes[name]
	if !ok {
		return nil, false
	}
	return cloneClass(info), true
}

// Classes returns the declared class names, sorted
func (m *Memory) Classes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.classes))
	for name := range m.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneClass(info *addendum.ClassInfo) *addendum.ClassInfo {
	out := *info
	out.Methods = append([]addendum.MemberInfo(nil), info.Methods...)
	out.Properties = append([]addendum.MemberInfo(nil), info.Properties...)
	return &out
}
