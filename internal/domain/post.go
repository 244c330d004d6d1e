package domain

import (
	"time"

	"github.com/banibsnetworks-source/banibs-production-sub001"
)

// Post is the slice of the content store the feed engine consumes.
type Post struct {
	ID           string                   `json:"id"`
	Author       string                   `json:"author"`
	Visibility   banibs.ContentVisibility `json:"visibility"`
	CreatedAt    time.Time                `json:"createdAt"`
	LikeCount    int                      `json:"likeCount"`
	CommentCount int                      `json:"commentCount"`
	ShareCount   int                      `json:"shareCount"`
	ViewCount    int                      `json:"viewCount"`
}

// FeedScore is the per-(post, viewer) shadow score. Ephemeral: computed
// per request, never persisted as ground truth.
type FeedScore struct {
	PostID     string      `json:"postId"`
	Trust      float64     `json:"trust"`
	Recency    float64     `json:"recency"`
	Engagement float64     `json:"engagement"`
	Total      float64     `json:"total"`
	ViewerTier banibs.Tier `json:"viewerTier"`
}

// RankDelta is one post's signed displacement between chronological
// and trust order. Positive means the post moved up.
type RankDelta struct {
	PostID       string `json:"postId"`
	Chronological int   `json:"chronological"`
	Trust         int   `json:"trust"`
	Delta         int   `json:"delta"`
}

// DiversityReport describes the tier distribution of a ranked feed.
type DiversityReport struct {
	Total       int                     `json:"total"`
	Counts      map[banibs.Tier]int     `json:"counts"`
	Percentages map[banibs.Tier]float64 `json:"percentages"`
	Entropy     float64                 `json:"entropy"`
}
