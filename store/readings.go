package store

import (
	"context"
	"errors"
	"time"

	"crowd-intelligence-api/models"

	"gorm.io/gorm"
)

type Readings struct {
	db *gorm.DB
}

func NewReadings(db *gorm.DB) *Readings {
	return &Readings{db: db}
}

func (s *Readings) Insert(ctx context.Context, reading *models.CrowdReading) error {
	return s.db.WithContext(ctx).Create(reading).Error
}

// LatestObserved returns the newest non-prediction reading for a place, or
// (nil, nil) when none exists yet.
func (s *Readings) LatestObserved(ctx context.Context, placeID string) (*models.CrowdReading, error) {
	var reading models.CrowdReading
	err := s.db.WithContext(ctx).
		Where("place_id = ? AND is_prediction = ?", placeID, false).
		Order("recorded_at DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// ListObserved returns observed readings newest-first for cursor pagination.
func (s *Readings) ListObserved(ctx context.Context, placeID string, limit int, before *time.Time) ([]models.CrowdReading, error) {
	query := s.db.WithContext(ctx).
		Where("place_id = ? AND is_prediction = ?", placeID, false).
		Order("recorded_at DESC").
		Limit(limit)
	if before != nil {
		query = query.Where("recorded_at < ?", *before)
	}

	var readings []models.CrowdReading
	if err := query.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// HourlyAverage returns the mean observed crowd index and the sample count
// for readings matching the weekday and hour-of-day since the given cutoff.
// Postgres DOW numbering (Sunday=0) matches time.Weekday.
func (s *Readings) HourlyAverage(ctx context.Context, placeID string, weekday time.Weekday, hour int, since time.Time) (float64, int, error) {
	var avg float64
	var count int
	row := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(AVG(crowd_index), 0), COUNT(*)
		FROM crowd_readings
		WHERE place_id = ?
		  AND is_prediction = false
		  AND recorded_at >= ?
		  AND EXTRACT(DOW FROM recorded_at) = ?
		  AND EXTRACT(HOUR FROM recorded_at) = ?
	`, placeID, since, int(weekday), hour).Row()
	if err := row.Scan(&avg, &count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

func (s *Readings) InsertWeatherSnapshot(ctx context.Context, snapshot *models.WeatherSnapshot) error {
	return s.db.WithContext(ctx).Create(snapshot).Error
}
