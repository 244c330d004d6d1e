package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/database/models"
)

// EnvelopeRepository persists the delayed-delivery queue. Claim is a
// per-row conditional update so two concurrent drain workers never
// claim the same envelope.
type EnvelopeRepository struct {
	db *gorm.DB
}

func NewEnvelopeRepository(db *gorm.DB) *EnvelopeRepository {
	return &EnvelopeRepository{db: db}
}

func toModel(env domain.NotificationEnvelope) models.NotificationEnvelope {
	return models.NotificationEnvelope{
		ID:               env.ID,
		Recipient:        env.Recipient,
		Actor:            env.Actor,
		ActorTier:        env.ActorTier.String(),
		Type:             env.Type,
		Payload:          env.Payload,
		Priority:         env.Priority.String(),
		BatchIntervalSec: int64(env.BatchInterval / time.Second),
		ScheduledAt:      env.ScheduledAt,
		Status:           env.Status,
		CreatedAt:        env.CreatedAt,
	}
}

func fromModel(row models.NotificationEnvelope) domain.NotificationEnvelope {
	return domain.NotificationEnvelope{
		ID:            row.ID,
		Recipient:     row.Recipient,
		Actor:         row.Actor,
		ActorTier:     banibs.ParseTier(row.ActorTier),
		Type:          row.Type,
		Payload:       row.Payload,
		Priority:      parsePriority(row.Priority),
		BatchInterval: time.Duration(row.BatchIntervalSec) * time.Second,
		ScheduledAt:   row.ScheduledAt,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt,
	}
}

func parsePriority(s string) domain.Priority {
	switch s {
	case "critical":
		return domain.PriorityCritical
	case "high":
		return domain.PriorityHigh
	case "medium":
		return domain.PriorityMedium
	case "low":
		return domain.PriorityLow
	case "minimal":
		return domain.PriorityMinimal
	default:
		return domain.PriorityNone
	}
}

func (r *EnvelopeRepository) Create(ctx context.Context, env domain.NotificationEnvelope) error {
	row := toModel(env)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *EnvelopeRepository) ListReady(ctx context.Context, now time.Time, limit int) ([]domain.NotificationEnvelope, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", domain.EnvelopePending, now).
		Order("scheduled_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.NotificationEnvelope
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	envelopes := make([]domain.NotificationEnvelope, 0, len(rows))
	for _, row := range rows {
		envelopes = append(envelopes, fromModel(row))
	}
	return envelopes, nil
}

// Claim moves each envelope pending→sending and returns only the rows
// this call actually transitioned. The per-id conditional update is
// the at-most-once point: a row already claimed elsewhere reports zero
// affected rows and is skipped.
func (r *EnvelopeRepository) Claim(ctx context.Context, ids []string) ([]domain.NotificationEnvelope, error) {
	claimed := make([]string, 0, len(ids))
	for _, id := range ids {
		result := r.db.WithContext(ctx).
			Model(&models.NotificationEnvelope{}).
			Where("id = ? AND status = ?", id, domain.EnvelopePending).
			Update("status", domain.EnvelopeSending)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			claimed = append(claimed, id)
		}
	}
	if len(claimed) == 0 {
		return nil, nil
	}

	var rows []models.NotificationEnvelope
	err := r.db.WithContext(ctx).
		Where("id IN ?", claimed).
		Order("scheduled_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	envelopes := make([]domain.NotificationEnvelope, 0, len(rows))
	for _, row := range rows {
		envelopes = append(envelopes, fromModel(row))
	}
	return envelopes, nil
}

func (r *EnvelopeRepository) MarkSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.NotificationEnvelope{}).
		Where("id IN ? AND status = ?", ids, domain.EnvelopeSending).
		Update("status", domain.EnvelopeSent).Error
}

func (r *EnvelopeRepository) Release(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.NotificationEnvelope{}).
		Where("id IN ? AND status = ?", ids, domain.EnvelopeSending).
		Update("status", domain.EnvelopePending).Error
}

func (r *EnvelopeRepository) ListPendingBefore(ctx context.Context, t time.Time) ([]domain.NotificationEnvelope, error) {
	var rows []models.NotificationEnvelope
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at < ?", domain.EnvelopePending, t).
		Order("scheduled_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	envelopes := make([]domain.NotificationEnvelope, 0, len(rows))
	for _, row := range rows {
		envelopes = append(envelopes, fromModel(row))
	}
	return envelopes, nil
}
