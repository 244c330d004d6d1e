package models

import "time"

// NotificationEnvelope is the persisted delayed-delivery queue row.
// Status transitions pending→sending→sent; sent rows are retained
// read-only as delivery history.
type NotificationEnvelope struct {
	ID               string `gorm:"primaryKey;size:36"`
	Recipient        string `gorm:"size:64;index:idx_envelope_ready,priority:2"`
	Actor            string `gorm:"size:64"`
	ActorTier        string `gorm:"size:24"`
	Type             string `gorm:"size:32"`
	Payload          string `gorm:"type:text"`
	Priority         string `gorm:"size:16"`
	BatchIntervalSec int64
	ScheduledAt      time.Time `gorm:"index"`
	Status           string    `gorm:"size:16;index:idx_envelope_ready,priority:1"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
