// Package store provides the gorm-backed data access used by the crowd
// engine. Places, events and sensors are owned by other marketplace services
// and are read-only here; readings, forecasts and weather snapshots are owned
// by this engine.
package store

import (
	"context"
	"errors"

	"crowd-intelligence-api/models"

	"gorm.io/gorm"
)

type Places struct {
	db *gorm.DB
}

func NewPlaces(db *gorm.DB) *Places {
	return &Places{db: db}
}

// Get returns (nil, nil) for an unknown place.
func (s *Places) Get(ctx context.Context, id string) (*models.Place, error) {
	var place models.Place
	err := s.db.WithContext(ctx).First(&place, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &place, nil
}

// ListScored returns the active leaf places (no other place points at them as
// parent), optionally narrowed by IDs and category. Parents group their
// children for display and are never scored themselves.
func (s *Places) ListScored(ctx context.Context, filter models.PlaceFilter) ([]models.Place, error) {
	parents := s.db.Model(&models.Place{}).
		Select("DISTINCT parent_id").
		Where("parent_id IS NOT NULL")

	query := s.db.WithContext(ctx).
		Where("active = ?", true).
		Where("id NOT IN (?)", parents).
		Order("id")

	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var places []models.Place
	if err := query.Find(&places).Error; err != nil {
		return nil, err
	}
	return places, nil
}
