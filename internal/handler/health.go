package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/iris-api/internal/feature"
	"github.com/deppfellow/iris-api/internal/middleware"
	"github.com/deppfellow/iris-api/internal/model"
	"github.com/deppfellow/iris-api/internal/server"
)

// HealthHandler reports whether the service can answer predictions.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth returns 200 with the model check when a classifier is loaded,
// 503 otherwise. The response lists the expected features and labels so
// clients can discover the request shape.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]interface{}{}
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if h.server.Model == nil {
		checks["model"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  "model not loaded",
		}
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
				"check_type": "model",
				"operation":  "health_check",
				"error_type": "model_unavailable",
			})
		}

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	checks["model"] = map[string]interface{}{
		"status":   "healthy",
		"path":     h.server.Config.Model.Path,
		"features": feature.Names(),
		"labels":   model.Labels(),
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}
