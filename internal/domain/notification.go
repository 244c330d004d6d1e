package domain

import (
	"time"

	"github.com/banibsnetworks-source/banibs-production-sub001"
)

// Priority is the delivery class a notification is scheduled under.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityMinimal
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PriorityMinimal:
		return "minimal"
	default:
		return "none"
	}
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"critical"`:
		*p = PriorityCritical
	case `"high"`:
		*p = PriorityHigh
	case `"medium"`:
		*p = PriorityMedium
	case `"low"`:
		*p = PriorityLow
	case `"minimal"`:
		*p = PriorityMinimal
	default:
		*p = PriorityNone
	}
	return nil
}

// Envelope lifecycle states. An envelope is created pending, claimed
// sending by exactly one drain worker, and retained read-only once
// sent.
const (
	EnvelopePending = "pending"
	EnvelopeSending = "sending"
	EnvelopeSent    = "sent"
)

// NotificationEnvelope is one scheduled notification.
type NotificationEnvelope struct {
	ID            string        `json:"id"`
	Recipient     string        `json:"recipient"`
	Actor         string        `json:"actor"`
	ActorTier     banibs.Tier   `json:"actorTier"`
	Type          string        `json:"type"`
	Payload       string        `json:"payload"`
	Priority      Priority      `json:"priority"`
	BatchInterval time.Duration `json:"batchInterval"`
	ScheduledAt   time.Time     `json:"scheduledAt"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// DeliveryItem is a formatted artifact handed to the delivery
// transport: either a single envelope (CRITICAL, lone HIGH) or a
// collapsed summary of a group.
type DeliveryItem struct {
	Recipient  string                 `json:"recipient"`
	Priority   Priority               `json:"priority"`
	Grouped    bool                   `json:"grouped"`
	Count      int                    `json:"count"`
	TypeCounts map[string]int         `json:"typeCounts,omitempty"`
	Preview    []NotificationEnvelope `json:"preview,omitempty"`
	Envelope   *NotificationEnvelope  `json:"envelope,omitempty"`
}

// DrainReport summarizes one drain pass.
type DrainReport struct {
	Claimed   int `json:"claimed"`
	Delivered int `json:"delivered"`
	Released  int `json:"released"`
}
