package models

import "time"

// Ingredient is one entry of the ingredient catalog that receipt items are
// matched against. Names are unique; the catalog is seeded at startup and
// extended through the admin API.
type Ingredient struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Category  string `gorm:"size:64;index" json:"category"`
}
