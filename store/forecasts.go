package store

import (
	"context"
	"time"

	"crowd-intelligence-api/models"

	"gorm.io/gorm"
)

type Forecasts struct {
	db *gorm.DB
}

func NewForecasts(db *gorm.DB) *Forecasts {
	return &Forecasts{db: db}
}

// Batch returns the forecast rows for a place and target date ordered by
// hour. An incomplete batch is treated as missing by the caller.
func (s *Forecasts) Batch(ctx context.Context, placeID string, date time.Time) ([]models.Forecast, error) {
	var rows []models.Forecast
	err := s.db.WithContext(ctx).
		Where("place_id = ? AND target_date = ?", placeID, dateOnly(date)).
		Order("hour").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceBatch swaps the whole day's forecast in one transaction so
// consumers never observe a partial batch.
func (s *Forecasts) ReplaceBatch(ctx context.Context, placeID string, date time.Time, rows []models.Forecast) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("place_id = ? AND target_date = ?", placeID, dateOnly(date)).
			Delete(&models.Forecast{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
