package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
	"github.com/banibsnetworks-source/banibs-production-sub001/policy"
)

var tracer = otel.Tracer("anomaly")

// AnomalyService watches tier changes for suspicious jumps. Strictly
// observational: nothing here blocks the change or feeds a permission
// decision, and any internal failure is logged and dropped.
type AnomalyService struct {
	policy policy.AnomalyPolicy
	signal *SignalService
}

func NewAnomalyService(anomalyPolicy policy.AnomalyPolicy, signal *SignalService) *AnomalyService {
	return &AnomalyService{
		policy: anomalyPolicy,
		signal: signal,
	}
}

func (s *AnomalyService) Observe(ctx context.Context, owner, target string, oldTier, newTier banibs.Tier) {
	ctx, span := tracer.Start(ctx, "Anomaly.Service.Observe")
	defer span.End()

	anomaly, flagged := s.policy.Evaluate(owner, target, oldTier, newTier)
	if !flagged {
		return
	}

	slog.WarnContext(
		ctx, "tier change anomaly",
		slog.String("owner", anomaly.Owner),
		slog.String("target", anomaly.Target),
		slog.String("oldTier", anomaly.OldTier.String()),
		slog.String("newTier", anomaly.NewTier.String()),
		slog.Int("distance", anomaly.Distance),
		slog.String("module", "anomaly"),
	)

	if s.signal == nil {
		return
	}
	event := banibs.Event{
		Channel:   domain.AnomalyChannel,
		Type:      "tier_change_anomaly",
		Subject:   anomaly.Owner,
		Body:      anomaly,
		Timestamp: time.Now().UTC(),
	}
	if err := s.signal.Publish(ctx, event); err != nil {
		span.RecordError(errors.Wrap(err, "anomaly event publish failed"))
	}
}
