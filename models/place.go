package models

import "time"

// Place categories known to the scoring engine. Weather sensitivity differs
// per category (a rainy day empties a beach faster than a museum).
const (
	CategoryBeach      = "beach"
	CategoryAttraction = "attraction"
	CategoryRestaurant = "restaurant"
	CategoryNightlife  = "nightlife"
	CategoryPark       = "park"
)

// Place is owned by the marketplace location service; read-only here.
// Only leaf places (no children pointing at them) are scored.
type Place struct {
	ID       string    `gorm:"column:id;primaryKey" json:"id"`
	Name     string    `gorm:"column:name" json:"name"`
	Category string    `gorm:"column:category" json:"category"`
	Lat      float64   `gorm:"column:lat" json:"lat"`
	Lng      float64   `gorm:"column:lng" json:"lng"`
	Active   bool      `gorm:"column:active" json:"active"`
	ParentID *string   `gorm:"column:parent_id" json:"parent_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Place) TableName() string { return "places" }

// PlaceFilter narrows ListScored results.
type PlaceFilter struct {
	IDs      []string
	Category string
}
