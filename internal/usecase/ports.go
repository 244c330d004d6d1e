package usecase

import (
	"context"
	"time"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

// RelationshipRepository reads declared relationships from the
// upstream relationship store. Declaration and storage of
// relationships is outside this engine; it only consumes them.
type RelationshipRepository interface {
	ListActive(ctx context.Context, owner string) ([]domain.Relationship, error)
	ListOwners(ctx context.Context) ([]string, error)
}

// EdgeRepository persists materialized trust edges. ReplaceEdges must
// be atomic: a concurrent reader sees either the full old set or the
// full new set, never zero edges or a mix.
type EdgeRepository interface {
	ReplaceEdges(ctx context.Context, owner string, edges []domain.TrustEdge, meta domain.TrustGraphMeta) error
	// GetEdges returns owner's outgoing edges, optionally filtered by
	// tier. limit 0 means unbounded.
	GetEdges(ctx context.Context, owner string, tier *banibs.Tier, limit int) ([]domain.TrustEdge, error)
	// GetTier resolves the tier owner assigns to target. Returns
	// domain.ErrNotFound when no edge exists.
	GetTier(ctx context.Context, owner, target string) (banibs.Tier, error)
	GetMeta(ctx context.Context, owner string) (domain.TrustGraphMeta, error)
}

// EnvelopeRepository persists notification envelopes. Claim is the
// only mutation requiring a conditional-update discipline: an envelope
// moves pending→sending exactly once across concurrent workers.
type EnvelopeRepository interface {
	Create(ctx context.Context, env domain.NotificationEnvelope) error
	ListReady(ctx context.Context, now time.Time, limit int) ([]domain.NotificationEnvelope, error)
	// Claim transitions the given pending envelopes to sending and
	// returns only those actually claimed by this call.
	Claim(ctx context.Context, ids []string) ([]domain.NotificationEnvelope, error)
	MarkSent(ctx context.Context, ids []string) error
	// Release returns claimed envelopes to pending after a failed
	// transport hand-off.
	Release(ctx context.Context, ids []string) error
	ListPendingBefore(ctx context.Context, t time.Time) ([]domain.NotificationEnvelope, error)
}

// RoomRepository reads door state and explicit access-list entries.
type RoomRepository interface {
	GetDoor(ctx context.Context, owner string) (domain.RoomDoor, error)
	GetAccessEntry(ctx context.Context, owner, visitor string) (domain.RoomAccessEntry, error)
}

// ContentRepository reads posts from the content store for the shadow
// feed evaluation.
type ContentRepository interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Post, error)
}

// DeliveryTransport hands a formatted artifact to the out-of-scope
// delivery layer (push/email/socket). A returned error triggers a
// claim release so the transport's retry picks the envelope up again.
type DeliveryTransport interface {
	Deliver(ctx context.Context, item domain.DeliveryItem) error
}

// EventPublisher fans engine events out to realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event banibs.Event) error
}

// AnomalyObserver receives tier-change observations. Implementations
// must never block or fail the calling operation.
type AnomalyObserver interface {
	Observe(ctx context.Context, owner, target string, oldTier, newTier banibs.Tier)
}
