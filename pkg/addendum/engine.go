package addendum

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/toyz/addendum/internal/docparser"
	"github.com/toyz/addendum/internal/utils"
)

// Engine resolves and constructs the annotations declared on the classes,
// methods and properties of a Provider.
//
// All engine state (parse cache, resolver, ignore-list and the creation
// guard) belongs to one engine. An engine serializes its own operations and
// may be used from several goroutines; two engines never observe each other.
type Engine struct {
	mu       sync.Mutex
	id       uuid.UUID
	registry *Registry
	provider Provider
	parser   Parser
	resolver Resolver
	entries  *utils.Cache[string, []Entry]
	guard    *CreationStack
	meta     map[string]struct{} // types whose class annotations are being built
	ignored  map[string]struct{}
	logger   zerolog.Logger
	metrics  *Metrics
}

// Option configures an Engine
type Option func(*Engine)

// WithProvider sets the source of reflectable classes
func WithProvider(p Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithParser replaces the doc comment parser
func WithParser(p Parser) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// WithResolver sets the tag resolution strategy
func WithResolver(r Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithLogger sets the logger used for debug events
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics enables metrics collection
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithIgnored adds type names to the ignore-list
func WithIgnored(names ...string) Option {
	return func(e *Engine) {
		for _, name := range names {
			e.ignored[name] = struct{}{}
		}
	}
}

// New creates an engine over reg. A nil reg gets a fresh registry holding
// only the built-in types.
func New(reg *Registry, opts ...Option) *Engine {
	if reg == nil {
		reg = NewRegistry()
	}
	e := &Engine{
		id:       uuid.New(),
		registry: reg,
		parser:   NewDocParser(),
		resolver: NewDefaultResolver(),
		entries:  utils.NewCache[string, []Entry](),
		guard:    newCreationStack(),
		meta:     make(map[string]struct{}),
		ignored:  make(map[string]struct{}),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("engine", e.id.String()).Logger()
	return e
}

// ID returns the unique identifier of the engine
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Registry returns the type registry the engine constructs from
func (e *Engine) Registry() *Registry {
	return e.registry
}

// DeclaredTypes lists every known annotation type
func (e *Engine) DeclaredTypes() []*Type {
	return e.registry.AllTypes()
}

// Ignore adds fully qualified type names to the ignore-list. Declarations
// resolving to an ignored type are skipped when building collections. The
// base type can never be ignored.
func (e *Engine) Ignore(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, name := range names {
		e.ignored[name] = struct{}{}
	}
}

// Ignores reports whether a type name is on the ignore-list
func (e *Engine) Ignores(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.ignored[name]
	return ok
}

// IgnoredTypes returns the ignore-list, sorted
func (e *Engine) IgnoredTypes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, 0, len(e.ignored))
	for name := range e.ignored {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ResetIgnored empties the ignore-list
func (e *Engine) ResetIgnored() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ignored = make(map[string]struct{})
}

// SetResolver replaces the resolver. A nil resolver restores the default one.
func (e *Engine) SetResolver(r Resolver) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r == nil {
		r = NewDefaultResolver()
	}
	e.resolver = r
}

// Resolve maps a tag to an annotation type name using the engine's resolver
func (e *Engine) Resolve(tag string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.resolveLocked(tag)
}

// ClearParseCache drops every cached parse result
func (e *Engine) ClearParseCache() {
	e.entries.Clear()
	e.logger.Debug().Msg("parse cache cleared")
}

// ClearResolverCache drops the resolver's cached resolutions, if it keeps any
func (e *Engine) ClearResolverCache() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.resolver.(CacheResetter); ok {
		r.ResetCache()
	}
}

// Reflect returns the annotated handle of a class. A registered annotation
// type the provider does not know is reflected from its own doc text.
func (e *Engine) Reflect(class string) (*Class, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer e.metrics.observeBuild(start)

	info, ok := e.classInfoLocked(class)
	if !ok {
		return nil, e.fail(&NotFoundError{Class: class})
	}
	annotations, err := e.buildLocked(OnClass(class), info.Doc, "")
	if err != nil {
		return nil, e.fail(err)
	}
	annotations.resolve = e.Resolve
	return &Class{annotated: annotated{annotations: annotations}, engine: e, info: info}, nil
}

// BuildOption configures a single Build call
type BuildOption func(*buildConfig)

type buildConfig struct {
	restriction string
}

// Restrict only constructs declarations whose type is, or extends, the type
// tag resolves to.
func Restrict(tag string) BuildOption {
	return func(c *buildConfig) {
		c.restriction = tag
	}
}

// Build constructs the annotation collection of a class, method or property
func (e *Engine) Build(target Target, opts ...BuildOption) (*Collection, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer e.metrics.observeBuild(start)

	doc, err := e.docLocked(target)
	if err != nil {
		return nil, e.fail(err)
	}
	annotations, err := e.buildLocked(target, doc, cfg.restriction)
	if err != nil {
		return nil, e.fail(err)
	}
	annotations.resolve = e.Resolve
	return annotations, nil
}

func (e *Engine) reflectMethod(class *Class, member MemberInfo) (*Method, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	annotations, err := e.buildLocked(OnMethod(class.Name(), member.Name), member.Doc, "")
	if err != nil {
		return nil, e.fail(err)
	}
	annotations.resolve = e.Resolve
	return &Method{annotated: annotated{annotations: annotations}, class: class, name: member.Name}, nil
}

func (e *Engine) reflectProperty(class *Class, member MemberInfo) (*Property, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	annotations, err := e.buildLocked(OnProperty(class.Name(), member.Name), member.Doc, "")
	if err != nil {
		return nil, e.fail(err)
	}
	annotations.resolve = e.Resolve
	return &Property{annotated: annotated{annotations: annotations}, class: class, name: member.Name}, nil
}

func (e *Engine) fail(err error) error {
	e.metrics.failed(err)
	return err
}

func (e *Engine) resolveLocked(tag string) (string, error) {
	name, err := e.resolver.Resolve(engineScope{e}, tag)
	if err != nil {
		return "", err
	}
	e.logger.Debug().Str("tag", tag).Str("type", name).Msg("tag resolved")
	return name, nil
}

func (e *Engine) classInfoLocked(class string) (*ClassInfo, bool) {
	if e.provider != nil {
		if info, ok := e.provider.Class(class); ok {
			return info, true
		}
	}
	if t, ok := e.registry.Lookup(class); ok {
		return &ClassInfo{Name: t.Name(), Doc: t.Doc()}, true
	}
	return nil, false
}

func (e *Engine) docLocked(target Target) (string, error) {
	if target.Kind == NestedTarget {
		return "", fmt.Errorf("nested annotations have no doc text of their own")
	}
	info, ok := e.classInfoLocked(target.Class)
	if !ok {
		return "", &NotFoundError{Class: target.Class}
	}

	switch target.Kind {
	case MethodTarget:
		member, ok := info.Method(target.Member)
		if !ok {
			return "", &NotFoundError{Class: target.Class, Member: target.Member}
		}
		return member.Doc, nil
	case PropertyTarget:
		member, ok := info.Property(target.Member)
		if !ok {
			return "", &NotFoundError{Class: target.Class, Member: target.Member}
		}
		return member.Doc, nil
	default:
		return info.Doc, nil
	}
}

// entriesLocked returns the parsed entries of a target, parsing doc on a
// cache miss
func (e *Engine) entriesLocked(target Target, doc string) ([]Entry, error) {
	key := target.QualifiedName()
	if entries, ok := e.entries.Get(key); ok {
		e.metrics.cacheHit()
		e.logger.Debug().Str("target", key).Msg("parse cache hit")
		return entries, nil
	}
	e.metrics.cacheMiss()
	e.logger.Debug().Str("target", key).Msg("parse cache miss")

	var entries []Entry
	if doc != "" {
		parsed, err := e.parser.Parse(doc)
		if err != nil {
			var syntaxErr *docparser.SyntaxError
			if errors.As(err, &syntaxErr) {
				return nil, &ParseError{Target: key, Err: syntaxErr}
			}
			return nil, fmt.Errorf("parse annotations of %s: %w", key, err)
		}
		entries = parsed
	}
	e.entries.Set(key, entries)
	return entries, nil
}

// classAnnotationsLocked builds the class level annotations of an annotation
// type, which hold its meta-annotations
func (e *Engine) classAnnotationsLocked(typeName string) (*Collection, error) {
	info, ok := e.classInfoLocked(typeName)
	if !ok {
		return newCollection(OnClass(typeName), e.resolveLocked), nil
	}
	if _, building := e.meta[typeName]; building {
		return nil, &CircularReferenceError{Type: typeName}
	}
	e.meta[typeName] = struct{}{}
	defer delete(e.meta, typeName)

	return e.buildLocked(OnClass(typeName), info.Doc, "")
}

// engineScope exposes the engine to its resolver
type engineScope struct {
	e *Engine
}

func (s engineScope) Types() []*Type {
	return s.e.registry.AllTypes()
}

func (s engineScope) Constructing(typeName string) bool {
	if s.e.guard.Contains(typeName) {
		return true
	}
	_, building := s.e.meta[typeName]
	return building
}

func (s engineScope) ClassAnnotations(typeName string) (*Collection, error) {
	return s.e.classAnnotationsLocked(typeName)
}
