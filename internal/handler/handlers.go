package handler

import (
	"github.com/deppfellow/iris-api/internal/server"
	"github.com/deppfellow/iris-api/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health     *HealthHandler
	OpenAPI    *OpenAPIHandler
	Prediction *PredictionHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s),
		OpenAPI:    NewOpenAPIHandler(s),
		Prediction: NewPredictionHandler(s, services.Prediction),
	}
}
