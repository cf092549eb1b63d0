package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/iris-api/internal/handler"
	"github.com/deppfellow/iris-api/internal/server"
)

// registerSystemRoutes registers endpoints that are not part of the
// prediction API: health, the OpenAPI document and Prometheus metrics.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/openapi.json", h.OpenAPI.ServeOpenAPI)

	if s.Config.Metrics.Enabled && s.Config.Metrics.Path != "" && s.Metrics != nil {
		r.GET(s.Config.Metrics.Path, echo.WrapHandler(s.Metrics.Handler()))
	}
}
