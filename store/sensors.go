package store

import (
	"context"
	"time"

	"crowd-intelligence-api/models"

	"gorm.io/gorm"
)

type Sensors struct {
	db *gorm.DB
}

func NewSensors(db *gorm.DB) *Sensors {
	return &Sensors{db: db}
}

func (s *Sensors) SensorsFor(ctx context.Context, placeID string) ([]models.Sensor, error) {
	var sensors []models.Sensor
	err := s.db.WithContext(ctx).
		Where("place_id = ? AND active = ?", placeID, true).
		Find(&sensors).Error
	if err != nil {
		return nil, err
	}
	return sensors, nil
}

func (s *Sensors) RecentReadings(ctx context.Context, sensorID string, since time.Time) ([]models.SensorReading, error) {
	var readings []models.SensorReading
	err := s.db.WithContext(ctx).
		Where("sensor_id = ? AND recorded_at >= ?", sensorID, since).
		Order("recorded_at DESC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// InsertReading is used by the MQTT ingest worker.
func (s *Sensors) InsertReading(ctx context.Context, reading *models.SensorReading) error {
	return s.db.WithContext(ctx).Create(reading).Error
}

// SensorExists validates ingest payloads against the registry.
func (s *Sensors) SensorExists(ctx context.Context, sensorID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Sensor{}).
		Where("id = ?", sensorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
