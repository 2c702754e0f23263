package routing

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/toyz/addendum/pkg/addendum"
)

// Annotation type names registered by RegisterTypes
const (
	RouteType  = "Routing_Route"
	PrefixType = "Routing_Prefix"
)

// Route binds a controller method to an HTTP route:
//
//	// @Route("GET /users/{id}")
//	// @Route(method="DELETE", path="/users/{id}", name="user.delete")
type Route struct {
	addendum.Annotation

	Value  string
	Method string
	Path   string
	Name   string
}

// Prefix prepends a path to every route of a controller:
//
//	// @Prefix("/api")
type Prefix struct {
	addendum.Annotation

	Value string
}

var methods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// RegisterTypes registers the Route and Prefix annotation types
func RegisterTypes(reg *addendum.Registry) error {
	if _, err := addendum.Register[Route](reg, RouteType,
		addendum.WithDoc(`@Target("method")`),
		addendum.WithCheck(checkRoute),
	); err != nil {
		return err
	}
	if _, err := addendum.Register[Prefix](reg, PrefixType,
		addendum.WithDoc(`@Target("class")`),
		addendum.WithCheck(checkPrefix),
	); err != nil {
		return err
	}
	return nil
}

// checkRoute splits the "METHOD /path" shorthand and validates the result
func checkRoute(inst *addendum.Instance, _ addendum.Target) error {
	route, ok := addendum.As[Route](inst)
	if !ok {
		return fmt.Errorf("unexpected annotation %s", inst.TypeName())
	}

	if route.Value != "" {
		method, path, found := strings.Cut(strings.TrimSpace(route.Value), " ")
		if !found {
			return fmt.Errorf("route %q must look like \"METHOD /path\"", route.Value)
		}
		if route.Method == "" {
			route.Method = method
		}
		if route.Path == "" {
			route.Path = strings.TrimSpace(path)
		}
	}

	route.Method = strings.ToUpper(route.Method)
	if _, ok := methods[route.Method]; !ok {
		return fmt.Errorf("unsupported HTTP method %q", route.Method)
	}
	if !strings.HasPrefix(route.Path, "/") {
		return fmt.Errorf("route path %q must start with /", route.Path)
	}
	return nil
}

func checkPrefix(inst *addendum.Instance, _ addendum.Target) error {
	prefix, ok := addendum.As[Prefix](inst)
	if !ok {
		return fmt.Errorf("unexpected annotation %s", inst.TypeName())
	}
	if !strings.HasPrefix(prefix.Value, "/") {
		return fmt.Errorf("prefix %q must start with /", prefix.Value)
	}
	return nil
}

// Binding is one route collected from a controller
type Binding struct {
	Controller string
	Action     string
	Name       string
	Method     string
	Path       Path
	Handler    http.HandlerFunc
}

func (b Binding) String() string {
	return fmt.Sprintf("%s %s -> %s.%s", b.Method, b.Path, b.Controller, b.Action)
}

// Collect reads the Route annotations on the methods of class and binds them
// to the same-named methods of controller. Annotated methods must have the
// signature func(http.ResponseWriter, *http.Request).
func Collect(engine *addendum.Engine, class string, controller any) ([]Binding, error) {
	reflected, err := engine.Reflect(class)
	if err != nil {
		return nil, err
	}

	prefix := ""
	if inst, err := reflected.Annotation(PrefixType); err != nil {
		return nil, err
	} else if p, ok := addendum.As[Prefix](inst); ok {
		prefix = strings.TrimSuffix(p.Value, "/")
	}

	actions, err := reflected.Methods()
	if err != nil {
		return nil, err
	}

	value := reflect.ValueOf(controller)
	var bindings []Binding
	for _, action := range actions {
		routes, err := action.AllAnnotations(RouteType)
		if err != nil {
			return nil, err
		}
		if len(routes) == 0 {
			continue
		}

		handler, err := handlerFor(value, action.Name())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", action.QualifiedName(), err)
		}
		for _, inst := range routes {
			route, _ := addendum.As[Route](inst)
			bindings = append(bindings, Binding{
				Controller: class,
				Action:     action.Name(),
				Name:       route.Name,
				Method:     route.Method,
				Path:       Path(prefix + route.Path),
				Handler:    handler,
			})
		}
	}
	return bindings, nil
}

func handlerFor(controller reflect.Value, name string) (http.HandlerFunc, error) {
	if !controller.IsValid() {
		return nil, fmt.Errorf("no controller to bind to")
	}
	method := controller.MethodByName(name)
	if !method.IsValid() {
		return nil, fmt.Errorf("controller %s has no method %s", controller.Type(), name)
	}
	switch fn := method.Interface().(type) {
	case func(http.ResponseWriter, *http.Request):
		return fn, nil
	case http.HandlerFunc:
		return fn, nil
	}
	return nil, fmt.Errorf("method %s must be func(http.ResponseWriter, *http.Request), got %s", name, method.Type())
}

// Mounter registers bindings on a router
type Mounter interface {
	Mount(b Binding)
	Name() string
}

// MountAll registers every binding on m
func MountAll(m Mounter, bindings []Binding) {
	for _, b := range bindings {
		m.Mount(b)
	}
}
