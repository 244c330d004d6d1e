package banibs

import "time"

// Event is the payload published on the realtime channels (tier-change
// anomalies, delivery hand-offs). Channels are prefixed per recipient so
// socket subscribers can listen selectively.
type Event struct {
	Channel   string    `json:"channel"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Body      any       `json:"body,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
