package domain

import (
	"github.com/banibsnetworks-source/banibs-production-sub001"
)

// Relationship is one declared relationship read from the upstream
// relationship store. Only active declarations participate in edge
// construction.
type Relationship struct {
	Owner  string      `json:"owner"`
	Target string      `json:"target"`
	Tier   banibs.Tier `json:"tier"`
	Status string      `json:"status"`
}

const RelationshipStatusActive = "active"
