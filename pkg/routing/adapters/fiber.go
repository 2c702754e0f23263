package adapters

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/toyz/addendum/pkg/routing"
)

// FiberAdapter mounts route bindings on a Fiber router
type FiberAdapter struct {
	router fiber.Router
}

// NewFiberAdapter creates a new Fiber adapter
func NewFiberAdapter(router fiber.Router) *FiberAdapter {
	return &FiberAdapter{router: router}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with a JSON error handler
func NewDefaultFiberAdapter() (*FiberAdapter, *fiber.App) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	return &FiberAdapter{router: app}, app
}

// Mount registers a binding with Fiber
func (fa *FiberAdapter) Mount(b routing.Binding) {
	path := b.Path.Format(routing.ColonParams, "*")
	handler := b.Handler
	route := fa.router.Add(b.Method, path, func(c *fiber.Ctx) error {
		params := c.AllParams()
		if rest, ok := params["*1"]; ok {
			delete(params, "*1")
			params["*"] = rest
		}
		return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, routing.WithParams(r, params))
		})(c)
	})
	if b.Name != "" {
		route.Name(b.Name)
	}
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}
