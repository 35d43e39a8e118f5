package store

import (
	"context"
	"time"

	"crowd-intelligence-api/models"

	"gorm.io/gorm"
)

type Events struct {
	db *gorm.DB
}

func NewEvents(db *gorm.DB) *Events {
	return &Events{db: db}
}

// ActiveEventsAt returns events at a place overlapping [from, to].
func (s *Events) ActiveEventsAt(ctx context.Context, placeID string, from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Where("starts_at <= ? AND ends_at >= ?", to, from).
		Order("starts_at").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
