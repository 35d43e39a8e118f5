package models

import "time"

// Forecast is one hour slot of a 24-row prediction batch. A batch is replaced
// whole when regenerated; consumers never see a partial day.
type Forecast struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	PlaceID    string    `gorm:"column:place_id;index:idx_forecasts_place_date" json:"place_id"`
	TargetDate time.Time `gorm:"column:target_date;type:date;index:idx_forecasts_place_date" json:"target_date"`
	Hour       int       `gorm:"column:hour" json:"hour"`

	PredictedIndex int     `gorm:"column:predicted_index" json:"predicted_index"`
	PredictedLevel string  `gorm:"column:predicted_level" json:"predicted_level"`
	Confidence     float64 `gorm:"column:confidence" json:"confidence"`

	// Decomposed contributions, kept for explainability.
	HistoricalComponent float64 `gorm:"column:historical_component" json:"historical_component"`
	WeatherComponent    float64 `gorm:"column:weather_component" json:"weather_component"`
	EventComponent      float64 `gorm:"column:event_component" json:"event_component"`
	TrendComponent      float64 `gorm:"column:trend_component" json:"trend_component"`

	IsBestHour  bool      `gorm:"column:is_best_hour" json:"is_best_hour"`
	GeneratedAt time.Time `gorm:"column:generated_at" json:"generated_at"`
}

func (Forecast) TableName() string { return "forecasts" }
