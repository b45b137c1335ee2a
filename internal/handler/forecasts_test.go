package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pricecast/internal/dto"
	"pricecast/internal/forecast"
	"pricecast/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubForecastService struct {
	resp *dto.ForecastResponse
	err  error
}

var _ service.ForecastService = (*stubForecastService)(nil)

func (s *stubForecastService) PredictPrices(ctx context.Context, sku string, daysAhead int) (*dto.ForecastResponse, error) {
	return s.resp, s.err
}

func predictRequest(t *testing.T, svc service.ForecastService, url string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewForecastsHandler(svc, nil, nil, t.TempDir())
	r.GET("/v1/forecasts/:sku", h.Predict)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestPredict_Success(t *testing.T) {
	svc := &stubForecastService{resp: &dto.ForecastResponse{
		SKU:       "SKU-1",
		Dates:     []string{"2026-09-02"},
		Prices:    []decimal.Decimal{decimal.RequireFromString("101.50")},
		ModelUsed: "linear_autoregressive",
		Metrics:   map[string]float64{"mape": 3.2},
	}}

	w := predictRequest(t, svc, "/v1/forecasts/SKU-1?days=1")
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "SKU-1", got.SKU)
	assert.Equal(t, "linear_autoregressive", got.ModelUsed)
	require.Len(t, got.Prices, 1)
	assert.Equal(t, "101.5", got.Prices[0].String())
}

func TestPredict_NonIntegerDays(t *testing.T) {
	w := predictRequest(t, &stubForecastService{}, "/v1/forecasts/SKU-1?days=soon")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredict_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid horizon", forecast.ErrInvalidHorizon, http.StatusBadRequest},
		{"insufficient history", &forecast.InsufficientHistoryError{SKU: "SKU-1", Observed: 5, Required: 14}, http.StatusUnprocessableEntity},
		{"model not found", &forecast.ModelNotFoundError{SKU: "SKU-1", Path: "/x"}, http.StatusNotFound},
		{"corrupt artifact", &forecast.CorruptArtifactError{SKU: "SKU-1", Path: "/x"}, http.StatusInternalServerError},
		{"unknown product", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"other failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := predictRequest(t, &stubForecastService{err: tc.err}, "/v1/forecasts/SKU-1")
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestPredict_InsufficientHistoryBody(t *testing.T) {
	svc := &stubForecastService{err: &forecast.InsufficientHistoryError{SKU: "SKU-1", Observed: 9, Required: 30}}
	w := predictRequest(t, svc, "/v1/forecasts/SKU-1")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Detail   string `json:"detail"`
		SKU      string `json:"sku"`
		Observed int    `json:"observed"`
		Required int    `json:"required"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SKU-1", body.SKU)
	assert.Equal(t, 9, body.Observed)
	assert.Equal(t, 30, body.Required)
	assert.NotEmpty(t, body.Detail)
}