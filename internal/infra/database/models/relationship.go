package models

import "time"

// Relationship mirrors the upstream relationship store's declarations.
// This engine only reads it; declaration CRUD lives elsewhere.
type Relationship struct {
	Owner     string `gorm:"primaryKey;size:64"`
	Target    string `gorm:"primaryKey;size:64"`
	Tier      string `gorm:"size:24"`
	Status    string `gorm:"size:16;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
