package domain

import (
	"time"

	"github.com/banibsnetworks-source/banibs-production-sub001"
)

// TrustEdge is one directed trust relationship. An edge from Owner to
// Target says nothing about the reverse direction. Weight is derived
// from the tier via the reach-scoring table at refresh time; edges are
// replaced wholesale, never mutated field by field.
type TrustEdge struct {
	Owner     string      `json:"owner"`
	Target    string      `json:"target"`
	Tier      banibs.Tier `json:"tier"`
	Weight    float64     `json:"weight"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// TrustGraphMeta caches per-owner outgoing edge counts by tier. It is
// recomputed with every edge refresh and is a read optimization only,
// never authoritative.
type TrustGraphMeta struct {
	Owner       string              `json:"owner"`
	TierCounts  map[banibs.Tier]int `json:"tierCounts"`
	TotalEdges  int                 `json:"totalEdges"`
	RefreshedAt time.Time           `json:"refreshedAt"`
}

// TraversalLayer is one depth level of a bounded multi-hop traversal.
type TraversalLayer struct {
	Depth int         `json:"depth"`
	Edges []TrustEdge `json:"edges"`
}

// MutualPeople is one node discovered by the peoples-of-peoples
// traversal, with the depth-1 connections it is reachable through.
type MutualPeople struct {
	ID            string   `json:"id"`
	MutualCount   int      `json:"mutualCount"`
	MutualPeoples []string `json:"mutualPeoples"`
}

// CircleOverlap is the result of a per-tier circle comparison between
// two users.
type CircleOverlap struct {
	Peoples []string `json:"peoples"`
	Cool    []string `json:"cool"`
	Alright []string `json:"alright"`
	Score   float64  `json:"score"`
}

// ReachReport is a user's aggregate reach score plus its breakdown.
type ReachReport struct {
	Score      float64             `json:"score"`
	EdgeSum    float64             `json:"edgeSum"`
	PoPBonus   float64             `json:"popBonus"`
	TierCounts map[banibs.Tier]int `json:"tierCounts"`
}

// RefreshReport summarizes a bulk edge refresh. Per-user failures are
// counted, not propagated.
type RefreshReport struct {
	TotalUsers int `json:"totalUsers"`
	TotalEdges int `json:"totalEdges"`
	Errors     int `json:"errors"`
}
