// Package router initializes the Echo router.
//
// It installs the global middleware chain and maps every path to its
// handler: the prediction endpoint plus the system routes.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/iris-api/internal/handler"
	"github.com/deppfellow/iris-api/internal/middleware"
	"github.com/deppfellow/iris-api/internal/server"
)

// NewRouter builds the Echo instance serving s.
//
// Middleware order matters: the request ID and the New Relic transaction
// must exist before ContextEnhancer builds the request logger, and
// RequestLogger must see that logger.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, s, h)
	registerPredictionRoutes(router, h)

	return router
}

func registerPredictionRoutes(r *echo.Echo, h *handler.Handlers) {
	r.Match([]string{http.MethodGet, http.MethodPost}, "/api",
		handler.Handle(h.Prediction.Handler, h.Prediction.Predict, http.StatusOK, handler.NewPredictRequest))
}
