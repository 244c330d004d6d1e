package policy

import (
	"github.com/banibsnetworks-source/banibs-production-sub001"
)

// AnomalyPolicy detects suspicious tier jumps. It is observational
// policy data: nothing here ever blocks a tier change or feeds back
// into a permission decision.
type AnomalyPolicy struct {
	// Threshold is the ordinal distance above which a change is
	// flagged. BLOCKED sits at maximal distance from everything.
	Threshold int
}

func DefaultAnomalyPolicy() AnomalyPolicy {
	return AnomalyPolicy{Threshold: 2}
}

// Anomaly describes a flagged tier change.
type Anomaly struct {
	Owner    string      `json:"owner"`
	Target   string      `json:"target"`
	OldTier  banibs.Tier `json:"oldTier"`
	NewTier  banibs.Tier `json:"newTier"`
	Distance int         `json:"distance"`
}

// Evaluate reports whether the change from old to new exceeds the
// configured distance threshold.
func (p AnomalyPolicy) Evaluate(owner, target string, oldTier, newTier banibs.Tier) (Anomaly, bool) {
	d := banibs.TierDistance(oldTier, newTier)
	if d <= p.Threshold {
		return Anomaly{}, false
	}
	return Anomaly{
		Owner:    owner,
		Target:   target,
		OldTier:  oldTier,
		NewTier:  newTier,
		Distance: d,
	}, true
}
