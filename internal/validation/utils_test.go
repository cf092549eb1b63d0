package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/iris-api/internal/errs"
)

type sampleRequest struct {
	Species string  `json:"species" validate:"required,oneof=setosa versicolor virginica"`
	Width   float64 `json:"width" validate:"min=0"`
}

func (r *sampleRequest) Validate() error {
	return validator.New().Struct(r)
}

type customRequest struct {
	fail bool
}

func (r *customRequest) BindRequest(c echo.Context) error {
	r.fail = c.QueryParam("fail") == "1"
	return nil
}

func (r *customRequest) Validate() error {
	if r.fail {
		return CustomValidationErrors{{Field: "petal width", Message: "must be a number"}}
	}
	return nil
}

func newContext(method, body string) echo.Context {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidateSuccess(t *testing.T) {
	req := &sampleRequest{}
	err := BindAndValidate(newContext(http.MethodPost, `{"species":"setosa","width":1.5}`), req)
	require.NoError(t, err)
	assert.Equal(t, "setosa", req.Species)
	assert.Equal(t, 1.5, req.Width)
}

func TestBindAndValidateMalformedBody(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"species":`), &sampleRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.NotEmpty(t, httpErr.Message)
}

func TestBindAndValidateTagErrors(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"species":"rose","width":-1}`), &sampleRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.True(t, httpErr.Override)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "species", Error: "must be one of: setosa versicolor virginica"},
		{Field: "width", Error: "must be at least 0"},
	}, httpErr.Errors)
}

func TestBindAndValidateRequestBinder(t *testing.T) {
	c := newContext(http.MethodGet, "")
	c.QueryParams().Set("fail", "1")

	err := BindAndValidate(c, &customRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, []errs.FieldError{{Field: "petal width", Error: "must be a number"}}, httpErr.Errors)

	require.NoError(t, BindAndValidate(newContext(http.MethodGet, ""), &customRequest{}))
}

func TestExtractValidationErrorUnknownType(t *testing.T) {
	msg, fieldErrors := extractValidationError(errors.New("boom"))
	assert.Equal(t, "Validation failed", msg)
	assert.Equal(t, []errs.FieldError{{Field: "body", Error: "boom"}}, fieldErrors)
}
