package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

const (
	defaultDrainBatch = 200
	defaultDigestHour = 9
	previewCap        = 5
	// stuckMultiplier flags pending envelopes that overstayed their
	// interval by this factor. Operational signal only, never a drop.
	stuckMultiplier = 3
)

// priorityByTier and intervalByPriority are fixed policy data. There
// is deliberately no per-user override mechanism.
var priorityByTier = map[banibs.Tier]domain.Priority{
	banibs.TierPeoples:        domain.PriorityCritical,
	banibs.TierCool:           domain.PriorityHigh,
	banibs.TierChill:          domain.PriorityMedium,
	banibs.TierAlright:        domain.PriorityLow,
	banibs.TierOthers:         domain.PriorityMinimal,
	banibs.TierOthersSafeMode: domain.PriorityNone,
	banibs.TierBlocked:        domain.PriorityNone,
}

var intervalByPriority = map[domain.Priority]time.Duration{
	domain.PriorityCritical: 0,
	domain.PriorityHigh:     0,
	domain.PriorityMedium:   300 * time.Second,
	domain.PriorityLow:      3600 * time.Second,
	domain.PriorityMinimal:  86400 * time.Second,
}

// SchedulerUsecase classifies notifications into delivery priorities
// and maintains the pollable delayed-delivery queue. "Waiting" is
// never an in-process timer: an envelope is scheduled and a separate
// poller later finds it ready.
type SchedulerUsecase struct {
	envelopes  EnvelopeRepository
	transport  DeliveryTransport
	signal     EventPublisher
	batchSize  int
	digestHour int
	nowFn      func() time.Time
}

func NewSchedulerUsecase(
	envelopes EnvelopeRepository,
	transport DeliveryTransport,
	signal EventPublisher,
	conf domain.Config,
) *SchedulerUsecase {
	batch := conf.DrainBatchSize
	if batch <= 0 {
		batch = defaultDrainBatch
	}
	digestHour := conf.DigestHourUTC
	if digestHour <= 0 || digestHour > 23 {
		digestHour = defaultDigestHour
	}
	return &SchedulerUsecase{
		envelopes:  envelopes,
		transport:  transport,
		signal:     signal,
		batchSize:  batch,
		digestHour: digestHour,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
}

// Classify maps an actor tier to its delivery priority. Unrecognized
// tiers fail closed to NONE.
func (uc *SchedulerUsecase) Classify(actorTier banibs.Tier) domain.Priority {
	if p, ok := priorityByTier[actorTier]; ok {
		return p
	}
	return domain.PriorityNone
}

// BatchInterval returns the deterministic batching interval of a
// priority. ok=false means the priority is never enqueued.
func (uc *SchedulerUsecase) BatchInterval(p domain.Priority) (time.Duration, bool) {
	d, ok := intervalByPriority[p]
	return d, ok
}

// EnqueueInput is one notification-producing action.
type EnqueueInput struct {
	Recipient     string
	Actor         string
	ActorTier     banibs.Tier
	Type          string
	Payload       string
	MutualPeoples bool
}

// Enqueue schedules one envelope. A mutual-PEOPLES pair forces
// CRITICAL regardless of the actor tier; a NONE priority creates
// nothing and returns nil.
func (uc *SchedulerUsecase) Enqueue(ctx context.Context, input EnqueueInput) (*domain.NotificationEnvelope, error) {
	priority := uc.Classify(input.ActorTier)
	if input.MutualPeoples {
		priority = domain.PriorityCritical
	}
	if priority == domain.PriorityNone {
		return nil, nil
	}

	interval, ok := uc.BatchInterval(priority)
	if !ok {
		return nil, nil
	}

	now := uc.nowFn()
	var scheduledAt time.Time
	switch priority {
	case domain.PriorityCritical, domain.PriorityHigh:
		scheduledAt = now
	case domain.PriorityMinimal:
		scheduledAt = uc.nextDigestTime(now)
	default:
		scheduledAt = now.Add(interval)
	}

	env := domain.NotificationEnvelope{
		ID:            uuid.New().String(),
		Recipient:     input.Recipient,
		Actor:         input.Actor,
		ActorTier:     input.ActorTier,
		Type:          input.Type,
		Payload:       input.Payload,
		Priority:      priority,
		BatchInterval: interval,
		ScheduledAt:   scheduledAt,
		Status:        domain.EnvelopePending,
		CreatedAt:     now,
	}
	if err := uc.envelopes.Create(ctx, env); err != nil {
		return nil, err
	}
	return &env, nil
}

// nextDigestTime anchors MINIMAL batching to the next occurrence of
// the fixed daily time, advancing a day if it already passed.
func (uc *SchedulerUsecase) nextDigestTime(now time.Time) time.Time {
	digest := time.Date(now.Year(), now.Month(), now.Day(), uc.digestHour, 0, 0, 0, time.UTC)
	if !digest.After(now) {
		digest = digest.AddDate(0, 0, 1)
	}
	return digest
}

// ReadyForDelivery returns all pending envelopes scheduled at or
// before now.
func (uc *SchedulerUsecase) ReadyForDelivery(ctx context.Context, now time.Time) ([]domain.NotificationEnvelope, error) {
	return uc.envelopes.ListReady(ctx, now, uc.batchSize)
}

type drainGroup struct {
	recipient string
	priority  domain.Priority
}

// Drain claims ready envelopes and hands formatted artifacts to the
// delivery transport. Claiming is an atomic conditional update, so
// concurrent drains never double-process an envelope. Envelopes whose
// hand-off fails are released back to pending.
func (uc *SchedulerUsecase) Drain(ctx context.Context, now time.Time) (domain.DrainReport, error) {
	ready, err := uc.envelopes.ListReady(ctx, now, uc.batchSize)
	if err != nil {
		return domain.DrainReport{}, err
	}
	if len(ready) == 0 {
		return domain.DrainReport{}, nil
	}

	ids := make([]string, 0, len(ready))
	for _, env := range ready {
		ids = append(ids, env.ID)
	}

	claimed, err := uc.envelopes.Claim(ctx, ids)
	if err != nil {
		return domain.DrainReport{}, err
	}
	report := domain.DrainReport{Claimed: len(claimed)}

	groups := map[drainGroup][]domain.NotificationEnvelope{}
	order := []drainGroup{}
	for _, env := range claimed {
		key := drainGroup{recipient: env.Recipient, priority: env.Priority}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], env)
	}

	for _, key := range order {
		envs := groups[key]
		for _, formatted := range formatGroup(key, envs) {
			item, itemIDs := formatted.item, formatted.ids
			if err := uc.transport.Deliver(ctx, item); err != nil {
				slog.WarnContext(
					ctx, "delivery hand-off failed, releasing claim",
					slog.String("recipient", key.recipient),
					slog.String("error", err.Error()),
					slog.String("module", "scheduler"),
				)
				if relErr := uc.envelopes.Release(ctx, itemIDs); relErr != nil {
					return report, relErr
				}
				report.Released += len(itemIDs)
				continue
			}
			if err := uc.envelopes.MarkSent(ctx, itemIDs); err != nil {
				return report, err
			}
			report.Delivered += len(itemIDs)
			uc.publishDelivered(ctx, key.recipient, item)
		}
	}

	return report, nil
}

// formattedItem pairs a delivery artifact with every envelope id it
// covers, so a capped preview never loses envelopes on MarkSent.
type formattedItem struct {
	item domain.DeliveryItem
	ids  []string
}

// formatGroup applies the per-priority grouping policy: CRITICAL is
// never grouped, HIGH collapses only when more than one envelope is
// ready for the recipient, everything slower is always a single
// summary artifact.
func formatGroup(key drainGroup, envs []domain.NotificationEnvelope) []formattedItem {
	individual := func() []formattedItem {
		items := make([]formattedItem, 0, len(envs))
		for i := range envs {
			env := envs[i]
			items = append(items, formattedItem{
				item: domain.DeliveryItem{
					Recipient: key.recipient,
					Priority:  key.priority,
					Count:     1,
					Envelope:  &env,
				},
				ids: []string{env.ID},
			})
		}
		return items
	}

	switch key.priority {
	case domain.PriorityCritical:
		return individual()
	case domain.PriorityHigh:
		if len(envs) <= 1 {
			return individual()
		}
	}

	summary := domain.DeliveryItem{
		Recipient:  key.recipient,
		Priority:   key.priority,
		Grouped:    true,
		Count:      len(envs),
		TypeCounts: map[string]int{},
	}
	ids := make([]string, 0, len(envs))
	for _, env := range envs {
		summary.TypeCounts[env.Type]++
		ids = append(ids, env.ID)
	}
	preview := envs
	if len(preview) > previewCap {
		preview = preview[:previewCap]
	}
	summary.Preview = append(summary.Preview, preview...)
	return []formattedItem{{item: summary, ids: ids}}
}

func (uc *SchedulerUsecase) publishDelivered(ctx context.Context, recipient string, item domain.DeliveryItem) {
	if uc.signal == nil {
		return
	}
	event := banibs.Event{
		Channel:   domain.DeliveryChannel + ":" + recipient,
		Type:      "delivery",
		Subject:   recipient,
		Body:      item,
		Timestamp: uc.nowFn(),
	}
	if err := uc.signal.Publish(ctx, event); err != nil {
		slog.WarnContext(
			ctx, "delivery event publish failed",
			slog.String("error", err.Error()),
			slog.String("module", "scheduler"),
		)
	}
}

// StuckEnvelopes reports pending envelopes that overstayed a multiple
// of their batch interval: an alerting signal, not a drop.
func (uc *SchedulerUsecase) StuckEnvelopes(ctx context.Context, now time.Time) ([]domain.NotificationEnvelope, error) {
	pending, err := uc.envelopes.ListPendingBefore(ctx, now)
	if err != nil {
		return nil, err
	}
	stuck := []domain.NotificationEnvelope{}
	for _, env := range pending {
		grace := env.BatchInterval * stuckMultiplier
		if grace == 0 {
			grace = time.Minute
		}
		if now.Sub(env.ScheduledAt) > grace {
			stuck = append(stuck, env)
		}
	}
	return stuck, nil
}
