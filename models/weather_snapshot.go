package models

import "time"

// WeatherSnapshot is persisted alongside each observed crowd reading so the
// prediction engine can learn weather-conditioned patterns later.
type WeatherSnapshot struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	PlaceID       string    `gorm:"column:place_id;index" json:"place_id"`
	TempC         float64   `gorm:"column:temp_c" json:"temp_c"`
	FeelsLikeC    float64   `gorm:"column:feels_like_c" json:"feels_like_c"`
	Humidity      int       `gorm:"column:humidity" json:"humidity"`
	WindSpeedKMH  float64   `gorm:"column:wind_speed_kmh" json:"wind_speed_kmh"`
	CloudCoverPct float64   `gorm:"column:cloud_cover_pct" json:"cloud_cover_pct"`
	PrecipMM      float64   `gorm:"column:precip_mm" json:"precip_mm"`
	Condition     string    `gorm:"column:condition" json:"condition"`
	Icon          string    `gorm:"column:icon" json:"icon"`
	RecordedAt    time.Time `gorm:"column:recorded_at" json:"recorded_at"`
}

func (WeatherSnapshot) TableName() string { return "weather_snapshots" }
