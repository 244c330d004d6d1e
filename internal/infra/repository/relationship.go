package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/database/models"
)

// RelationshipRepository reads the upstream relationship store. Only
// active declarations feed edge construction.
type RelationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

func (r *RelationshipRepository) ListActive(ctx context.Context, owner string) ([]domain.Relationship, error) {
	var rows []models.Relationship
	err := r.db.WithContext(ctx).
		Where("owner = ? AND status = ?", owner, domain.RelationshipStatusActive).
		Order("target").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	relationships := make([]domain.Relationship, 0, len(rows))
	for _, row := range rows {
		relationships = append(relationships, domain.Relationship{
			Owner:  row.Owner,
			Target: row.Target,
			Tier:   banibs.ParseTier(row.Tier),
			Status: row.Status,
		})
	}
	return relationships, nil
}

func (r *RelationshipRepository) ListOwners(ctx context.Context) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).
		Model(&models.Relationship{}).
		Distinct("owner").
		Order("owner").
		Pluck("owner", &owners).Error
	return owners, err
}
