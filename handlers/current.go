package handlers

import (
	"context"
	"errors"
	"net/http"

	"crowd-intelligence-api/models"
	"crowd-intelligence-api/services"

	"github.com/gin-gonic/gin"
)

type crowdService interface {
	GetCurrent(ctx context.Context, placeID string) (*models.CrowdReading, error)
}

type placeGetter interface {
	Get(ctx context.Context, id string) (*models.Place, error)
}

// CrowdHandler serves the current crowd reading for one place.
type CrowdHandler struct {
	crowds crowdService
	places placeGetter
}

func NewCrowdHandler(crowds crowdService, places placeGetter) *CrowdHandler {
	return &CrowdHandler{crowds: crowds, places: places}
}

type placeMeta struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

func (h *CrowdHandler) GetCurrent(c *gin.Context) {
	placeID := c.Param("id")

	reading, err := h.crowds.GetCurrent(c.Request.Context(), placeID)
	if errors.Is(err, services.ErrPlaceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "crowd lookup failed"})
		return
	}

	resp := gin.H{"crowd": reading}
	if place, err := h.places.Get(c.Request.Context(), placeID); err == nil && place != nil {
		resp["place"] = placeMeta{
			ID:       place.ID,
			Name:     place.Name,
			Category: place.Category,
			Lat:      place.Lat,
			Lng:      place.Lng,
		}
	}

	c.JSON(http.StatusOK, resp)
}
