// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers. The user routes
// come from one table that also feeds the OpenAPI document.
package router

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/userapi/internal/config"
	"github.com/deppfellow/userapi/internal/handler"
	"github.com/deppfellow/userapi/internal/middleware"
	"github.com/deppfellow/userapi/internal/openapi"
	"github.com/deppfellow/userapi/internal/server"
	"github.com/deppfellow/userapi/internal/validation"
)

// APIVersion is published in the OpenAPI document.
const APIVersion = "1.0.0"

// NewRouter builds the Echo instance with the middleware chain, the system
// routes and the user routes, and returns the OpenAPI document it serves.
func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, *openapi3.T, error) {
	doc, err := Document()
	if err != nil {
		return nil, nil, err
	}

	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.JSONSerializer = validation.StrictJSONSerializer{}
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request ID and the New Relic transaction must exist
	// before the context logger is built, and the request logger reads it.
	router.Use(
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
	)

	registerSystemRoutes(router, h, doc)

	if err := registerUserRoutes(router, h); err != nil {
		return nil, nil, err
	}

	return router, doc, nil
}

// Document builds the OpenAPI document for the API routes.
func Document() (*openapi3.T, error) {
	doc, err := openapi.Build(openapi.Info{
		Title:       config.ServiceName,
		Version:     APIVersion,
		Description: "CRUD over user records (name, age) stored in MongoDB.",
	}, userOperations())
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI document: %w", err)
	}
	return doc, nil
}
