package domain

// RoomDoor is the owner-controlled door state of a room. State is one
// of open, locked, dnd.
type RoomDoor struct {
	Owner string `json:"owner"`
	State string `json:"state"`
}

// RoomAccessEntry is an explicit per-visitor access-list row. Entry is
// one of never_allow, direct_entry, must_knock.
type RoomAccessEntry struct {
	Owner   string `json:"owner"`
	Visitor string `json:"visitor"`
	Entry   string `json:"entry"`
}
