package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crowd-intelligence-api/services"

	"github.com/gin-gonic/gin"
)

type heatmapService interface {
	Build(ctx context.Context, placeIDs []string, category string) ([]services.HeatmapPoint, error)
}

// HeatmapHandler serves map-ready points across many places.
type HeatmapHandler struct {
	heatmap heatmapService
	cache   *services.CacheService
}

func NewHeatmapHandler(heatmap heatmapService, cache *services.CacheService) *HeatmapHandler {
	return &HeatmapHandler{heatmap: heatmap, cache: cache}
}

type heatmapResponse struct {
	Data []services.HeatmapPoint `json:"data"`
}

func (h *HeatmapHandler) GetHeatmap(c *gin.Context) {
	category := c.Query("category")
	var placeIDs []string
	if idsStr := c.Query("place_ids"); idsStr != "" {
		placeIDs = strings.Split(idsStr, ",")
	}

	cacheKey := fmt.Sprintf("crowd:heatmap:%s:%s", category, strings.Join(placeIDs, ","))
	var cached heatmapResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	points, err := h.heatmap.Build(c.Request.Context(), placeIDs, category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "heatmap build failed"})
		return
	}

	resp := heatmapResponse{Data: points}
	go h.cache.Set(context.Background(), cacheKey, resp, 60*time.Second)

	c.JSON(http.StatusOK, resp)
}
