package services

import (
	"context"
	"fmt"
	"time"

	"crowd-intelligence-api/crowd"
	"crowd-intelligence-api/models"

	"github.com/rs/zerolog/log"
)

// HeatmapPoint is one place's current score shaped for map display.
type HeatmapPoint struct {
	PlaceID    string  `json:"place_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	CrowdIndex int     `json:"crowd_index"`
	CrowdLevel string  `json:"crowd_level"`
	Color      string  `json:"color"`
}

// Heatmap batches current readings across places. Places without a reading
// inside the freshness window are left out entirely rather than zero-filled.
type Heatmap struct {
	places   PlaceStore
	readings ReadingStore
	now      func() time.Time
}

func NewHeatmap(places PlaceStore, readings ReadingStore) *Heatmap {
	return &Heatmap{places: places, readings: readings, now: time.Now}
}

func (h *Heatmap) Build(ctx context.Context, placeIDs []string, category string) ([]HeatmapPoint, error) {
	places, err := h.places.ListScored(ctx, models.PlaceFilter{IDs: placeIDs, Category: category})
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}

	cutoff := h.now().Add(-FreshnessWindow)
	points := make([]HeatmapPoint, 0, len(places))

	for _, place := range places {
		reading, err := h.readings.LatestObserved(ctx, place.ID)
		if err != nil {
			log.Warn().Err(err).Str("place_id", place.ID).Msg("heatmap: reading lookup failed, skipping place")
			continue
		}
		if reading == nil || reading.RecordedAt.Before(cutoff) {
			continue
		}

		points = append(points, HeatmapPoint{
			PlaceID:    place.ID,
			Name:       place.Name,
			Category:   place.Category,
			Lat:        place.Lat,
			Lng:        place.Lng,
			CrowdIndex: reading.CrowdIndex,
			CrowdLevel: reading.CrowdLevel,
			Color:      crowd.LevelColors[crowd.Level(reading.CrowdLevel)],
		})
	}

	return points, nil
}
