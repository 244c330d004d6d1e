package models

import "time"

// TrustEdge is the persisted form of one directed trust edge. Rows are
// replaced wholesale per owner inside a transaction; no row is ever
// updated field by field.
type TrustEdge struct {
	Owner     string  `gorm:"primaryKey;size:64"`
	Target    string  `gorm:"primaryKey;size:64"`
	Tier      string  `gorm:"size:24;index"`
	Weight    float64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrustGraphMeta caches per-owner tier counts. TierCounts is a JSON
// object keyed by tier name.
type TrustGraphMeta struct {
	Owner       string `gorm:"primaryKey;size:64"`
	TierCounts  string `gorm:"type:jsonb;default:'{}'"`
	TotalEdges  int
	RefreshedAt time.Time
}
