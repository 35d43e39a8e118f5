package handlers

import (
	"context"
	"net/http"
	"time"

	"crowd-intelligence-api/models"

	"github.com/gin-gonic/gin"
)

type readingLister interface {
	ListObserved(ctx context.Context, placeID string, limit int, before *time.Time) ([]models.CrowdReading, error)
}

// HistoryHandler serves past observed readings with cursor pagination.
type HistoryHandler struct {
	readings readingLister
	places   placeGetter
}

func NewHistoryHandler(readings readingLister, places placeGetter) *HistoryHandler {
	return &HistoryHandler{readings: readings, places: places}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	placeID := c.Param("id")
	p := ParsePagination(c)

	place, err := h.places.Get(c.Request.Context(), placeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "place lookup failed"})
		return
	}
	if place == nil || !place.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
		return
	}

	rows, err := h.readings.ListObserved(c.Request.Context(), placeID, p.Limit+1, p.Before)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	hasMore := len(rows) > p.Limit
	if hasMore {
		rows = rows[:p.Limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		nextCursor = rows[len(rows)-1].RecordedAt.Format(time.RFC3339Nano)
	}

	c.JSON(http.StatusOK, CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore})
}
