package router

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/userapi/internal/handler"
)

// registerSystemRoutes registers endpoints that are not part of the user
// API: the health check and the documentation.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, doc *openapi3.T) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/documentation", h.OpenAPI.ServeOpenAPIUI)
	r.GET("/openapi.json", h.OpenAPI.ServeSpec(doc))
}
