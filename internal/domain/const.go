package domain

const (
	RequesterIdCtxKey = "bn-requesterId"
)

const (
	RequesterIdHeader = "bn-requester-id"
)

const (
	// AnomalyChannel is the redis pubsub channel prefix for tier-change
	// anomaly events.
	AnomalyChannel = "anomaly"
	// DeliveryChannel is the pubsub channel prefix for delivery
	// hand-off events, keyed per recipient.
	DeliveryChannel = "delivery"
)
