package adapters

import (
	"github.com/labstack/echo/v4"

	"github.com/toyz/addendum/pkg/routing"
)

// EchoAdapter mounts route bindings on an Echo instance
type EchoAdapter struct {
	engine *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with a default Echo instance
func NewDefaultEchoAdapter() (*EchoAdapter, *echo.Echo) {
	e := echo.New()
	e.HideBanner = true
	return &EchoAdapter{engine: e}, e
}

// Mount registers a binding with Echo
func (ea *EchoAdapter) Mount(b routing.Binding) {
	path := b.Path.Format(routing.ColonParams, "*")
	wrapped := echo.WrapHandler(b.Handler)
	ea.engine.Add(b.Method, path, func(c echo.Context) error {
		names, values := c.ParamNames(), c.ParamValues()
		params := make(map[string]string, len(names))
		for i, name := range names {
			if i < len(values) {
				params[name] = values[i]
			}
		}
		routing.WithParams(c.Request(), params)
		return wrapped(c)
	}).Name = b.Name
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}
