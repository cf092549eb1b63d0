package service

import (
	"github.com/deppfellow/iris-api/internal/server"
)

type Services struct {
	Prediction *PredictionService
}

func NewServices(s *server.Server) *Services {
	return &Services{
		Prediction: NewPredictionService(s),
	}
}
