package handler

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/iris-api/internal/errs"
	"github.com/deppfellow/iris-api/internal/metrics"
	"github.com/deppfellow/iris-api/internal/server"
	"github.com/deppfellow/iris-api/internal/service"
)

// NoRequestMessage is returned, with HTTP 200, when the request has no body.
const NoRequestMessage = "no request received"

// PredictRequest is the free-form feature object posted to /api.
type PredictRequest struct {
	Features map[string]any

	// Received is false when the body was absent, blank or JSON null.
	Received bool
}

// BindRequest reads the body without requiring a JSON Content-Type.
// Numbers are kept as json.Number so feature parsing sees them unchanged.
func (r *PredictRequest) BindRequest(c echo.Context) error {
	body := c.Request().Body
	if body == nil {
		return nil
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return errs.NewBadRequestError("Failed to read request body", false, nil, nil)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var features map[string]any
	if err := dec.Decode(&features); err != nil {
		return errs.NewBadRequestError("Request body must be a JSON object", false, nil, nil)
	}
	if dec.More() {
		return errs.NewBadRequestError("Request body must contain a single JSON object", false, nil, nil)
	}

	r.Features = features
	r.Received = true
	return nil
}

// Validate accepts any object. Per-feature checks happen during extraction.
func (r *PredictRequest) Validate() error {
	return nil
}

type PredictResponse struct {
	Prediction string `json:"PREDICTION,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (r *PredictResponse) TraceAttributes() map[string]interface{} {
	if r.Prediction == "" {
		return map[string]interface{}{"prediction.empty_request": true}
	}
	return map[string]interface{}{"prediction.label": r.Prediction}
}

type PredictionHandler struct {
	Handler
	predictionService *service.PredictionService
}

func NewPredictionHandler(s *server.Server, predictionService *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		Handler:           NewHandler(s),
		predictionService: predictionService,
	}
}

// Predict answers GET and POST /api with {"PREDICTION": label}, or
// {"error": "no request received"} when nothing was sent.
func (h *PredictionHandler) Predict(c echo.Context, req *PredictRequest) (*PredictResponse, error) {
	if !req.Received {
		h.server.Metrics.ObserveError(metrics.ReasonEmptyRequest)
		return &PredictResponse{Error: NoRequestMessage}, nil
	}

	label, err := h.predictionService.Predict(c.Request().Context(), req.Features)
	if err != nil {
		return nil, err
	}

	return &PredictResponse{Prediction: label}, nil
}

// NewPredictRequest allocates the per-request payload for Handle.
func NewPredictRequest() *PredictRequest {
	return &PredictRequest{}
}
