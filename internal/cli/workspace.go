package cli

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/toyz/addendum/pkg/addendum"
	"github.com/toyz/addendum/pkg/addendum/source"
	"github.com/toyz/addendum/pkg/routing"
	"github.com/toyz/addendum/pkg/validation"
)

// Workspace holds the engine built over a set of scanned directories
type Workspace struct {
	Config   *Config
	Targets  []ScanTarget
	Source   *source.GoSource
	Registry *addendum.Registry
	Engine   *addendum.Engine
	Metrics  *addendum.Metrics

	logger zerolog.Logger
}

// NewWorkspace scans targets and builds an engine configured by cfg. The
// routing and validation annotation types are always available; annotation
// types declared in the scanned code are discovered on top of them.
func NewWorkspace(cfg *Config, targets []ScanTarget, logger zerolog.Logger) (*Workspace, error) {
	metrics, err := addendum.NewMetrics(nil)
	if err != nil {
		return nil, err
	}

	reg := addendum.NewRegistry()
	if err := routing.RegisterTypes(reg); err != nil {
		return nil, err
	}
	if err := validation.RegisterTypes(reg); err != nil {
		return nil, err
	}

	ws := &Workspace{
		Config:   cfg,
		Targets:  targets,
		Source:   source.NewGoSource(),
		Registry: reg,
		Metrics:  metrics,
		logger:   logger,
	}

	for _, target := range targets {
		if err := ws.Source.ParseDir(target.Dir, target.Recursive); err != nil {
			return nil, fmt.Errorf("scan %s: %w", target.Dir, err)
		}
	}
	if err := ws.discover(); err != nil {
		return nil, err
	}

	opts := []addendum.Option{
		addendum.WithProvider(ws.Source),
		addendum.WithLogger(logger),
		addendum.WithMetrics(metrics),
		addendum.WithIgnored(cfg.Ignore...),
	}
	if cfg.Resolver == ResolverNamespace {
		opts = append(opts, addendum.WithResolver(addendum.NewNamespaceResolver(
			addendum.WithAliasTag(cfg.AliasTag),
			addendum.WithNamespaceTag(cfg.NamespaceTag),
		)))
	}
	ws.Engine = addendum.New(reg, opts...)
	return ws, nil
}

func (w *Workspace) discover() error {
	defined, err := w.Source.Discover(w.Registry)
	if err != nil {
		return err
	}
	for _, t := range defined {
		w.logger.Debug().Str("type", t.Name()).Str("extends", t.Extends()).Msg("annotation type discovered")
	}
	return nil
}

// Reload reparses one changed file and drops every cached parse
func (w *Workspace) Reload(path string) error {
	if err := w.Source.ParseFile(path); err != nil {
		return err
	}
	if err := w.discover(); err != nil {
		return err
	}
	w.Engine.ClearParseCache()
	w.Engine.ClearResolverCache()
	return nil
}

// Forget drops a deleted file
func (w *Workspace) Forget(path string) {
	w.Source.Remove(path)
	w.Engine.ClearParseCache()
	w.Engine.ClearResolverCache()
}

// MemberReport lists the annotations of one method or property
type MemberReport struct {
	Name        string
	Annotations []*addendum.Instance
}

// ClassReport lists the annotations found on a class and its members
type ClassReport struct {
	Name        string
	Annotations []*addendum.Instance
	Methods     []MemberReport
	Properties  []MemberReport
}

// Annotated reports whether anything in the class carries an annotation
func (r *ClassReport) Annotated() bool {
	return len(r.Annotations) > 0 || len(r.Methods) > 0 || len(r.Properties) > 0
}

// Inspect builds the annotations of class and its members. Members without
// annotations are left out.
func (w *Workspace) Inspect(class string) (*ClassReport, error) {
	reflected, err := w.Engine.Reflect(class)
	if err != nil {
		return nil, err
	}
	report := &ClassReport{Name: class, Annotations: reflected.Annotations()}

	methods, err := reflected.Methods()
	if err != nil {
		return nil, err
	}
	for _, m := range methods {
		if all := m.Annotations(); len(all) > 0 {
			report.Methods = append(report.Methods, MemberReport{Name: m.Name(), Annotations: all})
		}
	}

	props, err := reflected.Properties()
	if err != nil {
		return nil, err
	}
	for _, p := range props {
		if all := p.Annotations(); len(all) > 0 {
			report.Properties = append(report.Properties, MemberReport{Name: p.Name(), Annotations: all})
		}
	}
	return report, nil
}

// Classes returns every scanned class that is not itself an annotation type
func (w *Workspace) Classes() []string {
	var out []string
	for _, name := range w.Source.Classes() {
		if !w.Registry.IsAnnotation(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
