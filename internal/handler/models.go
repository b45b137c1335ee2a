package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pricecast/internal/apierror"
	"pricecast/internal/dto"
	"pricecast/internal/forecast"
	"pricecast/internal/mlstore"
)

// ModelsHandler exposes the trained-artifact inventory.
type ModelsHandler struct{ store *mlstore.Store }

func NewModelsHandler(store *mlstore.Store) *ModelsHandler {
	return &ModelsHandler{store: store}
}

// List godoc
// @Summary      List trained models
// @Tags         models
// @Produce      json
// @Success      200 {object} dto.TrainedModelListResponse
// @Router       /v1/models [get]
func (h *ModelsHandler) List(c *gin.Context) {
	skus, err := h.store.ListTrained()
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list models"))
		return
	}

	items := make([]dto.TrainedModelResponse, 0, len(skus))
	for _, sku := range skus {
		_, _, meta, err := h.store.Load(sku)
		if err != nil {
			// A half-written or corrupt artifact should not break the
			// listing of the healthy ones.
			continue
		}
		items = append(items, metadataToResponse(meta))
	}
	c.JSON(http.StatusOK, dto.TrainedModelListResponse{Data: items})
}

// Get godoc
// @Summary      Get a trained model's metadata
// @Tags         models
// @Produce      json
// @Param        sku path string true "Product SKU"
// @Success      200 {object} dto.TrainedModelResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/models/{sku} [get]
func (h *ModelsHandler) Get(c *gin.Context) {
	sku := c.Param("sku")
	_, _, meta, err := h.store.Load(sku)
	if err != nil {
		var notFound *forecast.ModelNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, apierror.New("no trained model for "+sku))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("stored model is unreadable"))
		return
	}
	c.JSON(http.StatusOK, metadataToResponse(meta))
}

// Delete godoc
// @Summary      Delete a trained model
// @Description  Removes the artifact directory and its index row. Forecasts for the SKU fall back to the moving average until retrained.
// @Tags         models
// @Param        sku path string true "Product SKU"
// @Success      204 "deleted"
// @Failure      404 {object} apierror.APIError
// @Router       /v1/models/{sku} [delete]
func (h *ModelsHandler) Delete(c *gin.Context) {
	sku := c.Param("sku")
	deleted, err := h.store.Delete(c.Request.Context(), sku)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to delete model"))
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, apierror.New("no trained model for "+sku))
		return
	}
	c.Status(http.StatusNoContent)
}

func metadataToResponse(meta *mlstore.Metadata) dto.TrainedModelResponse {
	return dto.TrainedModelResponse{
		SKU:             meta.SKU,
		ModelType:       meta.ModelType,
		Version:         meta.Version,
		FeatureCount:    len(meta.FeatureNames),
		Metrics:         meta.Metrics,
		TrainingSamples: meta.TrainingSamples,
		TrainedAt:       meta.TrainedAt.Format(time.RFC3339),
	}
}
