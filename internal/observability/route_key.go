package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
)

// UnmatchedRoute buckets requests that never reached an endpoint, so the
// metric key space stays bounded by the registered routes.
const UnmatchedRoute = "unmatched"

// endpoints caches, per app, the method+pattern pairs of non-middleware
// routes. The index is built on first use, after routes are registered.
var endpoints sync.Map // *fiber.App -> map[string]struct{}

// RouteKey returns the registered pattern of the endpoint serving c, or
// UnmatchedRoute when the request only passed through middleware.
func RouteKey(c *fiber.Ctx) string {
	r := c.Route()
	if r == nil || len(r.Handlers) == 0 || r.Path == "" {
		return UnmatchedRoute
	}
	if _, ok := endpointIndex(c.App())[r.Method+" "+r.Path]; !ok {
		return UnmatchedRoute
	}
	return r.Path
}

func endpointIndex(app *fiber.App) map[string]struct{} {
	if cached, ok := endpoints.Load(app); ok {
		return cached.(map[string]struct{})
	}
	index := make(map[string]struct{})
	for _, route := range app.GetRoutes(true) {
		index[route.Method+" "+route.Path] = struct{}{}
	}
	actual, _ := endpoints.LoadOrStore(app, index)
	return actual.(map[string]struct{})
}
