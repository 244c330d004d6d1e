package models

import "time"

// RoomDoor is the owner-controlled door state of a room.
type RoomDoor struct {
	Owner     string `gorm:"primaryKey;size:64"`
	State     string `gorm:"size:16"`
	UpdatedAt time.Time
}

// RoomAccessEntry is an explicit per-visitor access-list row.
type RoomAccessEntry struct {
	Owner     string `gorm:"primaryKey;size:64"`
	Visitor   string `gorm:"primaryKey;size:64"`
	Entry     string `gorm:"size:16"`
	CreatedAt time.Time
}
