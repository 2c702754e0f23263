package source

import (
	"fmt"
	"strings"

	"github.com/toyz/addendum/pkg/addendum"
)

// Discover defines a dynamic annotation type in reg for every struct that
// embeds addendum.Annotation, or embeds a struct that is itself an annotation
// type. Each type is named after its Go type, its properties come from its
// exported fields and its doc text carries its meta-annotations.
//
// Types already registered are left alone, so Discover may be called again
// after more files were parsed. The types defined by this call are returned
// parents first.
func (g *GoSource) Discover(reg *addendum.Registry) ([]*addendum.Type, error) {
	g.mu.RLock()
	candidates := make(map[string]typeScan)
	var order []string
	for _, path := range g.sortedFiles() {
		for _, t := range g.scans[path].types {
			if _, seen := candidates[t.name]; !seen {
				order = append(order, t.name)
			}
			candidates[t.name] = t
		}
	}
	g.mu.RUnlock()

	var defined []*addendum.Type
	for progress := true; progress; {
		progress = false
		for _, name := range order {
			t := candidates[name]
			if reg.IsRegistered(name) {
				continue
			}
			parent, ok := annotationParent(t, reg)
			if !ok {
				continue
			}

			var props []string
			for _, f := range t.fields {
				if prop, ok := annotationProperty(f); ok {
					props = append(props, prop)
				}
			}
			typ, err := reg.Define(name,
				addendum.Extends(parent),
				addendum.WithProperties(props...),
				addendum.WithDoc(t.doc),
			)
			if err != nil {
				return defined, fmt.Errorf("discover %s: %w", name, err)
			}
			defined = append(defined, typ)
			progress = true
		}
	}
	return defined, nil
}

// annotationParent returns the annotation type t extends, if any
func annotationParent(t typeScan, reg *addendum.Registry) (string, bool) {
	for _, embed := range t.embeds {
		if embed == "addendum.Annotation" {
			return addendum.BaseType, true
		}
		name := embed
		if i := strings.LastIndex(embed, "."); i >= 0 {
			name = embed[i+1:]
		}
		if name != addendum.BaseType && reg.IsAnnotation(name) {
			return name, true
		}
	}
	return "", false
}
