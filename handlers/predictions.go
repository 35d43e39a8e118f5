package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"crowd-intelligence-api/models"
	"crowd-intelligence-api/services"

	"github.com/gin-gonic/gin"
)

type predictionService interface {
	GetPredictions(ctx context.Context, placeID string, date time.Time) ([]models.Forecast, *services.ForecastSummary, error)
}

// PredictionsHandler serves the 24-hour forecast batch for a place.
type PredictionsHandler struct {
	predictions predictionService
	cache       *services.CacheService
}

func NewPredictionsHandler(predictions predictionService, cache *services.CacheService) *PredictionsHandler {
	return &PredictionsHandler{predictions: predictions, cache: cache}
}

type predictionsResponse struct {
	Data    []models.Forecast         `json:"data"`
	Summary *services.ForecastSummary `json:"summary"`
}

func (h *PredictionsHandler) GetPredictions(c *gin.Context) {
	placeID := c.Param("id")

	date := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	cacheKey := fmt.Sprintf("crowd:predictions:%s:%s", placeID, date.Format("2006-01-02"))
	var cached predictionsResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, summary, err := h.predictions.GetPredictions(c.Request.Context(), placeID, date)
	if errors.Is(err, services.ErrPlaceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	resp := predictionsResponse{Data: rows, Summary: summary}
	go h.cache.Set(context.Background(), cacheKey, resp, 60*time.Second)

	c.JSON(http.StatusOK, resp)
}
