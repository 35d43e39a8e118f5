package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventNames is stored as a JSON array in a text column.
type EventNames []string

func (e EventNames) Value() (driver.Value, error) {
	if len(e) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (e *EventNames) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*e = nil
		return nil
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("unsupported type for EventNames: %T", src)
	}
}

// CrowdReading is an immutable snapshot of how busy a place is. Observed
// readings (IsPrediction=false) are produced by the aggregator; forecast
// snapshots come from the prediction engine. Rows are superseded by newer
// ones, never updated.
type CrowdReading struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	PlaceID    string `gorm:"column:place_id;index:idx_readings_place_ts" json:"place_id"`
	CrowdIndex int    `gorm:"column:crowd_index" json:"crowd_index"`
	CrowdLevel string `gorm:"column:crowd_level" json:"crowd_level"`

	// Per-signal scores, each nullable: a collector that had no data for
	// this round leaves its column NULL rather than writing a zero.
	LiveScore     *float64 `gorm:"column:live_score" json:"live_score"`
	HistoricScore *float64 `gorm:"column:historic_score" json:"historic_score"`
	WeatherScore  *float64 `gorm:"column:weather_score" json:"weather_score"`
	EventScore    *float64 `gorm:"column:event_score" json:"event_score"`
	SensorScore   *float64 `gorm:"column:sensor_score" json:"sensor_score"`
	SocialScore   *float64 `gorm:"column:social_score" json:"social_score"`

	// Ambient weather at observation time.
	TempC            *float64 `gorm:"column:temp_c" json:"temp_c"`
	PrecipMM         *float64 `gorm:"column:precip_mm" json:"precip_mm"`
	WindSpeedKMH     *float64 `gorm:"column:wind_speed_kmh" json:"wind_speed_kmh"`
	WeatherCondition *string  `gorm:"column:weather_condition" json:"weather_condition"`

	ActiveEvents EventNames `gorm:"column:active_events;type:text" json:"active_events"`

	IsPrediction bool     `gorm:"column:is_prediction" json:"is_prediction"`
	Confidence   *float64 `gorm:"column:confidence" json:"confidence,omitempty"`

	RecordedAt time.Time `gorm:"column:recorded_at;index:idx_readings_place_ts" json:"recorded_at"`
}

func (CrowdReading) TableName() string { return "crowd_readings" }
