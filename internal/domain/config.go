package domain

import "time"

// Config is the domain-level runtime configuration handed to usecases
// and handlers. Values come from internal/config with defaults applied.
type Config struct {
	FQDN string

	// TraversalFanoutCap bounds edges read per intermediate node during
	// multi-hop traversal.
	TraversalFanoutCap int

	// AnomalyThreshold is the tier-jump distance above which a change
	// is logged (never blocked).
	AnomalyThreshold int

	// DrainBatchSize caps envelopes claimed per drain pass.
	DrainBatchSize int

	// DigestHourUTC anchors MINIMAL-priority batching to a fixed daily
	// time.
	DigestHourUTC int

	// RefreshParallelism bounds concurrent per-user refreshes during a
	// bulk refresh.
	RefreshParallelism int

	// DrainInterval is the poll cadence of the drain worker.
	DrainInterval time.Duration
}
