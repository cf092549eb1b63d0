package service

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/iris-api/internal/config"
	"github.com/deppfellow/iris-api/internal/errs"
	"github.com/deppfellow/iris-api/internal/metrics"
	"github.com/deppfellow/iris-api/internal/server"
)

// stubClassifier records the rows it receives and answers with a fixed result.
type stubClassifier struct {
	rows    [][]float64
	indexes []int
	err     error
	delay   time.Duration
}

func (s *stubClassifier) Predict(x [][]float64) ([]int, error) {
	s.rows = append(s.rows, x...)
	time.Sleep(s.delay)
	return s.indexes, s.err
}

func newTestService(clf *stubClassifier) (*PredictionService, *server.Server) {
	logger := zerolog.Nop()
	s := &server.Server{
		Config:  &config.Config{Observability: config.DefaultObservabilityConfig()},
		Logger:  &logger,
		Model:   clf,
		Metrics: metrics.New(),
	}
	return NewPredictionService(s), s
}

func TestPredictPassesOrderedVector(t *testing.T) {
	clf := &stubClassifier{indexes: []int{0}}
	svc, s := newTestService(clf)

	label, err := svc.Predict(context.Background(), map[string]any{
		"petal width":  0.2,
		"sepal length": 5.1,
		"petal length": 1.4,
		"sepal width":  3.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "setosa", label)
	assert.Equal(t, [][]float64{{5.1, 3.5, 1.4, 0.2}}, clf.rows)
	require.NoError(t, testutil.GatherAndCompare(s.Metrics.Registry(),
		strings.NewReader(predictionsHelp+`iris_predictions_total{label="setosa"} 1
`), "iris_predictions_total"))
}

func TestPredictEmptyObject(t *testing.T) {
	clf := &stubClassifier{indexes: []int{2}}
	svc, _ := newTestService(clf)

	label, err := svc.Predict(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "virginica", label)
	assert.Equal(t, [][]float64{{0, 0, 0, 0}}, clf.rows)
}

func TestPredictInvalidFeatures(t *testing.T) {
	clf := &stubClassifier{indexes: []int{0}}
	svc, s := newTestService(clf)

	_, err := svc.Predict(context.Background(), map[string]any{
		"sepal length": "long",
		"petal width":  []any{1.0},
	})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, []errs.FieldError{
		{Field: "sepal length", Error: "must be a number"},
		{Field: "petal width", Error: "must be a number"},
	}, httpErr.Errors)
	assert.Empty(t, clf.rows, "classifier must not run on invalid input")
	require.NoError(t, testutil.GatherAndCompare(s.Metrics.Registry(),
		strings.NewReader(errorsHelp+`iris_prediction_errors_total{reason="invalid_features"} 1
`), "iris_prediction_errors_total"))
}

func TestPredictUnknownClass(t *testing.T) {
	svc, _ := newTestService(&stubClassifier{indexes: []int{7}})

	_, err := svc.Predict(context.Background(), map[string]any{"sepal length": 5.1})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, CodeUnknownClassIndex, httpErr.Code)
}

func TestPredictClassifierError(t *testing.T) {
	boom := errors.New("boom")
	svc, _ := newTestService(&stubClassifier{err: boom})

	_, err := svc.Predict(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var httpErr *errs.HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestPredictWrongResultCount(t *testing.T) {
	svc, _ := newTestService(&stubClassifier{indexes: []int{}})

	_, err := svc.Predict(context.Background(), map[string]any{})
	assert.EqualError(t, err, "classifier returned 0 predictions for 1 row")
}

func TestPredictSlowLogsWarning(t *testing.T) {
	clf := &stubClassifier{indexes: []int{1}, delay: 5 * time.Millisecond}
	svc, s := newTestService(clf)
	s.Config.Observability.Logging.SlowPredictionThreshold = time.Millisecond

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	label, err := svc.Predict(ctx, map[string]any{"petal length": 4.2})
	require.NoError(t, err)
	assert.Equal(t, "versicolor", label)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"label":"versicolor"`)
}

const predictionsHelp = `# HELP iris_predictions_total Number of successful predictions by predicted label.
# TYPE iris_predictions_total counter
`

const errorsHelp = `# HELP iris_prediction_errors_total Number of prediction requests that did not produce a label, by reason.
# TYPE iris_prediction_errors_total counter
`
