package service

import (
	"context"
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/iris-api/internal/errs"
	"github.com/deppfellow/iris-api/internal/feature"
	"github.com/deppfellow/iris-api/internal/metrics"
	"github.com/deppfellow/iris-api/internal/model"
	"github.com/deppfellow/iris-api/internal/server"
)

// CodeUnknownClassIndex is the error code returned when the classifier
// produces an index with no label.
const CodeUnknownClassIndex = "UNKNOWN_CLASS_INDEX"

type PredictionService struct {
	server *server.Server
}

func NewPredictionService(s *server.Server) *PredictionService {
	return &PredictionService{server: s}
}

// Predict classifies a single request body and returns the species label.
//
// Non-numeric features produce a 400 *errs.HTTPError listing each offending
// feature. A class index without a label produces a 500 with
// CodeUnknownClassIndex. Any other classifier failure is returned wrapped and
// left to the global error handler.
func (ps *PredictionService) Predict(ctx context.Context, input map[string]any) (string, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	vec, err := feature.Extract(input)
	if err != nil {
		ps.server.Metrics.ObserveError(metrics.ReasonInvalidFeatures)
		return "", invalidFeaturesError(err)
	}

	if ignored := feature.Ignored(input); len(ignored) > 0 {
		logger.Debug().Strs("ignored_keys", ignored).Msg("request carried undeclared keys")
	}

	segment := newrelic.FromContext(ctx).StartSegment("model.predict")
	indexes, err := ps.server.Model.Predict([][]float64{vec})
	segment.End()
	if err != nil {
		ps.server.Metrics.ObserveError(metrics.ReasonModel)
		return "", errors.Wrap(err, "classifier prediction failed")
	}
	if len(indexes) != 1 {
		ps.server.Metrics.ObserveError(metrics.ReasonModel)
		return "", errors.Errorf("classifier returned %d predictions for 1 row", len(indexes))
	}

	label, err := model.Label(indexes[0])
	if err != nil {
		ps.server.Metrics.ObserveError(metrics.ReasonUnknownClass)
		logger.Error().
			Err(err).
			Int("class_index", indexes[0]).
			Floats64("features", vec).
			Msg("classifier returned an unknown class")
		return "", errs.NewInternalServerErrorWithCode(CodeUnknownClassIndex,
			fmt.Sprintf("Model returned unknown class index %d", indexes[0]))
	}

	elapsed := time.Since(start)
	ps.server.Metrics.ObservePrediction(label, elapsed)

	var event *zerolog.Event
	if threshold := ps.slowThreshold(); threshold > 0 && elapsed > threshold {
		event = logger.Warn().Dur("threshold", threshold)
	} else {
		event = logger.Debug()
	}
	event.
		Floats64("features", vec).
		Str("label", label).
		Dur("duration", elapsed).
		Msg("prediction completed")

	return label, nil
}

func (ps *PredictionService) slowThreshold() time.Duration {
	if ps.server.Config == nil || ps.server.Config.Observability == nil {
		return 0
	}
	return ps.server.Config.Observability.Logging.SlowPredictionThreshold
}

func invalidFeaturesError(err error) error {
	var invalid feature.ValueErrors
	if !errors.As(err, &invalid) {
		return errs.NewBadRequestError("Validation failed", true, nil, []errs.FieldError{{
			Field: "body",
			Error: err.Error(),
		}})
	}

	fieldErrors := make([]errs.FieldError, 0, len(invalid))
	for _, ve := range invalid {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: ve.Name,
			Error: "must be a number",
		})
	}
	return errs.NewBadRequestError("Validation failed", true, nil, fieldErrors)
}
