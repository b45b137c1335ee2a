package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pricecast/internal/apierror"
	"pricecast/internal/forecast"
	"pricecast/internal/infra"
	"pricecast/internal/service"
	"pricecast/internal/worker"
)

// ForecastsHandler exposes price forecasting and report generation.
type ForecastsHandler struct {
	svc        service.ForecastService
	products   service.ProductService
	dispatcher *worker.Dispatcher
	reportPath string
}

func NewForecastsHandler(
	svc service.ForecastService,
	products service.ProductService,
	dispatcher *worker.Dispatcher,
	reportPath string,
) *ForecastsHandler {
	return &ForecastsHandler{
		svc:        svc,
		products:   products,
		dispatcher: dispatcher,
		reportPath: reportPath,
	}
}

// Predict godoc
// @Summary      Forecast prices for a product
// @Description  Returns one predicted price per future day. Uses the trained per-product model when available, or a 14-day moving-average fallback.
// @Tags         forecasts
// @Produce      json
// @Param        sku   path  string true  "Product SKU"
// @Param        days  query int    false "Horizon in days (default 7)"
// @Success      200  {object} dto.ForecastResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.InsufficientHistory
// @Router       /v1/forecasts/{sku} [get]
func (h *ForecastsHandler) Predict(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("days must be an integer"))
		return
	}

	resp, err := h.svc.PredictPrices(c.Request.Context(), c.Param("sku"), days)
	if err != nil {
		h.writeForecastError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report generates and streams a PDF forecast report for a SKU.
func (h *ForecastsHandler) Report(c *gin.Context) {
	sku := c.Param("sku")
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("days must be an integer"))
		return
	}

	product, err := h.products.GetBySKU(c.Request.Context(), sku)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}

	resp, err := h.svc.PredictPrices(c.Request.Context(), sku, days)
	if err != nil {
		h.writeForecastError(c, err)
		return
	}

	path, err := infra.GenerateForecastPDF(product.Name, resp, h.reportPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to generate report"))
		return
	}
	c.FileAttachment(path, "forecast_"+sku+".pdf")
}

// Train godoc
// @Summary      Queue model training for a product
// @Description  Enqueues an async training job. Poll /v1/models/{sku} for the resulting artifact.
// @Tags         forecasts
// @Produce      json
// @Param        sku path string true "Product SKU"
// @Success      202 "queued"
// @Failure      404 {object} apierror.APIError
// @Router       /v1/forecasts/{sku}/train [post]
func (h *ForecastsHandler) Train(c *gin.Context) {
	sku := c.Param("sku")
	if _, err := h.products.GetBySKU(c.Request.Context(), sku); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}

	payload := worker.TrainingJobPayload{SKU: sku}
	if err := h.dispatcher.EnqueueTraining(c.Request.Context(), payload); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to enqueue training job"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true, "sku": sku})
}

// writeForecastError maps pipeline errors to HTTP statuses:
//
//	invalid horizon      → 400
//	unknown product      → 404
//	missing artifact     → 404
//	too little history   → 422 (with observed/required counts)
//	corrupt artifact     → 500
func (h *ForecastsHandler) writeForecastError(c *gin.Context, err error) {
	var insufficient *forecast.InsufficientHistoryError
	var notFound *forecast.ModelNotFoundError
	var corrupt *forecast.CorruptArtifactError

	switch {
	case errors.Is(err, forecast.ErrInvalidHorizon):
		c.JSON(http.StatusBadRequest, apierror.New("days must be >= 1"))
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity,
			apierror.NewInsufficientHistory(insufficient.SKU, insufficient.Observed, insufficient.Required))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, apierror.New("no trained model for "+notFound.SKU))
	case errors.As(err, &corrupt):
		c.JSON(http.StatusInternalServerError, apierror.New("stored model is unreadable"))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("forecast failed"))
	}
}
