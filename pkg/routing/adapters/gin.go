package adapters

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toyz/addendum/pkg/routing"
)

// GinAdapter mounts route bindings on a Gin router
type GinAdapter struct {
	router gin.IRoutes
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(router gin.IRoutes) *GinAdapter {
	return &GinAdapter{router: router}
}

// NewDefaultGinAdapter creates a new Gin adapter with a default Gin engine
func NewDefaultGinAdapter() (*GinAdapter, *gin.Engine) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	return &GinAdapter{router: engine}, engine
}

// Mount registers a binding with Gin
func (ga *GinAdapter) Mount(b routing.Binding) {
	path := b.Path.Format(routing.ColonParams, "*path")
	handler := b.Handler
	ga.router.Handle(b.Method, path, func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			if p.Key == "path" && hasWildcard(b.Path) {
				params["*"] = strings.TrimPrefix(p.Value, "/")
				continue
			}
			params[p.Key] = p.Value
		}
		handler(c.Writer, routing.WithParams(c.Request, params))
	})
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

func hasWildcard(p routing.Path) bool {
	for _, part := range p.Parts() {
		if part.Type == routing.WildcardPart {
			return true
		}
	}
	return false
}
