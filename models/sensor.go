package models

import "time"

// Sensor is a physical occupancy counter installed at a place. Owned by the
// marketplace's device registry; read-only here except for readings.
type Sensor struct {
	ID       string `gorm:"column:id;primaryKey" json:"id"`
	PlaceID  string `gorm:"column:place_id;index" json:"place_id"`
	Label    string `gorm:"column:label" json:"label"`
	Capacity int    `gorm:"column:capacity" json:"capacity"`
	Active   bool   `gorm:"column:active" json:"active"`
}

func (Sensor) TableName() string { return "sensors" }

// SensorReading is a raw occupancy observation. Only readings inside the
// recency window participate in the sensor signal.
type SensorReading struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SensorID   string    `gorm:"column:sensor_id;index:idx_sensor_readings_sensor_ts" json:"sensor_id"`
	Count      int       `gorm:"column:count" json:"count"`
	RecordedAt time.Time `gorm:"column:recorded_at;index:idx_sensor_readings_sensor_ts" json:"recorded_at"`
}

func (SensorReading) TableName() string { return "sensor_readings" }
