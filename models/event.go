package models

import "time"

// Event is a scheduled happening at a place (concert, market, match). Owned
// by the marketplace's event service; read-only here.
type Event struct {
	ID       string    `gorm:"column:id;primaryKey" json:"id"`
	PlaceID  string    `gorm:"column:place_id;index" json:"place_id"`
	Name     string    `gorm:"column:name" json:"name"`
	StartsAt time.Time `gorm:"column:starts_at" json:"starts_at"`
	EndsAt   time.Time `gorm:"column:ends_at" json:"ends_at"`
}

func (Event) TableName() string { return "events" }
