package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/database/models"
)

// ContentRepository reads posts for the shadow feed evaluation. Posts
// come back newest first, matching the live chronological order the
// shadow ranking is compared against.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Post
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, domain.Post{
			ID:           row.ID,
			Author:       row.Author,
			Visibility:   banibs.ParseVisibility(row.Visibility),
			CreatedAt:    row.CreatedAt,
			LikeCount:    row.LikeCount,
			CommentCount: row.CommentCount,
			ShareCount:   row.ShareCount,
			ViewCount:    row.ViewCount,
		})
	}
	return posts, nil
}
