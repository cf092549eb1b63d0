package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePrediction(t *testing.T) {
	m := New()

	m.ObservePrediction("setosa", 2*time.Millisecond)
	m.ObservePrediction("setosa", time.Millisecond)
	m.ObservePrediction("virginica", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictions.WithLabelValues("setosa")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("virginica")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.predictions.WithLabelValues("versicolor")))
}

func TestObserveError(t *testing.T) {
	m := New()

	m.ObserveError(ReasonEmptyRequest)
	m.ObserveError(ReasonUnknownClass)
	m.ObserveError(ReasonEmptyRequest)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.errors.WithLabelValues(ReasonEmptyRequest)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues(ReasonUnknownClass)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePrediction("setosa", time.Millisecond)
		m.ObserveError(ReasonModel)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObservePrediction("versicolor", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `iris_predictions_total{label="versicolor"} 1`)
	assert.Contains(t, string(body), "iris_prediction_duration_seconds_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}
