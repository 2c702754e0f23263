// Package addendum attaches typed metadata to classes, methods and
// properties through annotations written in their doc comments.
//
// Annotation types are registered up front in a Registry, either as plain Go
// structs (Register) or as dynamic property sets (Registry.Define). An Engine
// then reflects classes supplied by a Provider, parses their doc comments,
// resolves each tag to a registered type and constructs the annotation
// instances:
//
//	reg := addendum.NewRegistry()
//	addendum.MustRegister[Route](reg, "Web_Route", addendum.WithDoc(`@Target("method")`))
//
//	engine := addendum.New(reg, addendum.WithProvider(src))
//	class, err := engine.Reflect("UserController")
//	method, err := class.Method("List")
//	route, err := method.Annotation("Route")
//
// Tags are resolved by the engine's Resolver. The DefaultResolver accepts the
// full type name or its final underscore-delimited segment, so "Route"
// resolves to "Web_Route". NamespaceResolver resolves "ns:alias" tags declared
// with the Alias and Namespace meta-annotations.
//
// An annotation type restricts where it may be placed by carrying a Target
// meta-annotation in its own doc comment, listing any of "class", "method",
// "property", "meta" and "nested".
//
// Every cache and the circular reference guard belong to a single Engine. An
// Engine may be used from several goroutines; calls are serialized per engine.
package addendum
