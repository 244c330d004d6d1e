package models

import "time"

// Post is the slice of the content store consumed by the shadow feed
// evaluation. Content CRUD lives elsewhere; this engine only reads.
type Post struct {
	ID           string `gorm:"primaryKey;size:36"`
	Author       string `gorm:"size:64;index"`
	Visibility   string `gorm:"size:16"`
	LikeCount    int
	CommentCount int
	ShareCount   int
	ViewCount    int
	CreatedAt    time.Time `gorm:"index"`
}
