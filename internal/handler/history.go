package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pricecast/internal/apierror"
	"pricecast/internal/dto"
	"pricecast/internal/service"
	"pricecast/internal/worker"
)

// HistoryHandler exposes the observation streams: manual appends, the
// paginated price history, and the manual scrape trigger.
type HistoryHandler struct {
	svc        service.IngestionService
	dispatcher *worker.Dispatcher
}

func NewHistoryHandler(svc service.IngestionService, dispatcher *worker.Dispatcher) *HistoryHandler {
	return &HistoryHandler{svc: svc, dispatcher: dispatcher}
}

// RecordPrice godoc
// @Summary      Record a price observation
// @Description  Appends one immutable price point for a product. Observations feed model training and forecasting.
// @Tags         history
// @Accept       json
// @Produce      json
// @Param        body body dto.RecordPriceObservationRequest true "Observation"
// @Success      201  {object} dto.PriceObservationItem
// @Failure      404  {object} apierror.APIError
// @Router       /v1/observations/prices [post]
func (h *HistoryHandler) RecordPrice(c *gin.Context) {
	var req dto.RecordPriceObservationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordPriceObservation(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("product not found"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordSale godoc
// @Summary      Record a sales observation
// @Description  Appends one day's sales row for a product. Quantities feed the demand features of the price model.
// @Tags         history
// @Accept       json
// @Produce      json
// @Param        body body dto.RecordSalesObservationRequest true "Sales row"
// @Success      201  "created"
// @Failure      404  {object} apierror.APIError
// @Router       /v1/observations/sales [post]
func (h *HistoryHandler) RecordSale(c *gin.Context) {
	var req dto.RecordSalesObservationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RecordSalesObservation(c.Request.Context(), req); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("product not found"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusCreated)
}

// ListPrices returns the paginated raw price history for a SKU, most recent
// first.
func (h *HistoryHandler) ListPrices(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.ListPriceHistory(c.Request.Context(), c.Param("sku"), page, limit)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list price history"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TriggerScrape enqueues an immediate scrape job instead of waiting for the
// next cron tick.
func (h *HistoryHandler) TriggerScrape(c *gin.Context) {
	payload := worker.ScrapeJobPayload{Trigger: "manual"}
	if err := h.dispatcher.EnqueueScrape(c.Request.Context(), payload); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to enqueue scrape job"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}
