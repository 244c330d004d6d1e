package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/database/models"
)

const metaCacheTTL = 300 // seconds

// EdgeRepository persists trust edges in postgres with a memcached
// read cache in front of the per-owner meta counts. The cache is a
// read optimization only; postgres stays authoritative.
type EdgeRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewEdgeRepository(db *gorm.DB, mc *memcache.Client) *EdgeRepository {
	return &EdgeRepository{db: db, mc: mc}
}

func metaCacheKey(owner string) string {
	return "trustmeta:" + owner
}

// ReplaceEdges swaps one owner's edge set inside a single transaction:
// readers see the full old set or the full new set, never a partial
// state. The meta row is recomputed in the same transaction and the
// cache entry dropped afterwards.
func (r *EdgeRepository) ReplaceEdges(ctx context.Context, owner string, edges []domain.TrustEdge, meta domain.TrustGraphMeta) error {
	rows := make([]models.TrustEdge, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, models.TrustEdge{
			Owner:     e.Owner,
			Target:    e.Target,
			Tier:      e.Tier.String(),
			Weight:    e.Weight,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		})
	}

	counts := map[string]int{}
	for tier, n := range meta.TierCounts {
		counts[tier.String()] = n
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	metaRow := models.TrustGraphMeta{
		Owner:       owner,
		TierCounts:  string(countsJSON),
		TotalEdges:  meta.TotalEdges,
		RefreshedAt: meta.RefreshedAt,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner = ?", owner).Delete(&models.TrustEdge{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 500).Error; err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}},
			DoUpdates: clause.AssignmentColumns([]string{"tier_counts", "total_edges", "refreshed_at"}),
		}).Create(&metaRow).Error
	})
	if err != nil {
		return err
	}

	if r.mc != nil {
		// A stale miss is fine; postgres is authoritative.
		_ = r.mc.Delete(metaCacheKey(owner))
	}
	return nil
}

func (r *EdgeRepository) GetEdges(ctx context.Context, owner string, tier *banibs.Tier, limit int) ([]domain.TrustEdge, error) {
	query := r.db.WithContext(ctx).Where("owner = ?", owner).Order("target")
	if tier != nil {
		query = query.Where("tier = ?", tier.String())
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.TrustEdge
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	edges := make([]domain.TrustEdge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, domain.TrustEdge{
			Owner:     row.Owner,
			Target:    row.Target,
			Tier:      banibs.ParseTier(row.Tier),
			Weight:    row.Weight,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return edges, nil
}

func (r *EdgeRepository) GetTier(ctx context.Context, owner, target string) (banibs.Tier, error) {
	var row models.TrustEdge
	err := r.db.WithContext(ctx).
		Where("owner = ? AND target = ?", owner, target).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return banibs.TierUnknown, domain.NotFoundError{Resource: "trust edge"}
		}
		return banibs.TierUnknown, err
	}
	return banibs.ParseTier(row.Tier), nil
}

func (r *EdgeRepository) GetMeta(ctx context.Context, owner string) (domain.TrustGraphMeta, error) {
	if r.mc != nil {
		if item, err := r.mc.Get(metaCacheKey(owner)); err == nil {
			var meta domain.TrustGraphMeta
			if err := json.Unmarshal(item.Value, &meta); err == nil {
				return meta, nil
			}
		}
	}

	var row models.TrustGraphMeta
	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TrustGraphMeta{}, domain.NotFoundError{Resource: "trust graph meta"}
		}
		return domain.TrustGraphMeta{}, err
	}

	counts := map[string]int{}
	if err := json.Unmarshal([]byte(row.TierCounts), &counts); err != nil {
		return domain.TrustGraphMeta{}, err
	}
	meta := domain.TrustGraphMeta{
		Owner:       row.Owner,
		TierCounts:  map[banibs.Tier]int{},
		TotalEdges:  row.TotalEdges,
		RefreshedAt: row.RefreshedAt,
	}
	for name, n := range counts {
		meta.TierCounts[banibs.ParseTier(name)] = n
	}

	if r.mc != nil {
		if serialized, err := json.Marshal(meta); err == nil {
			_ = r.mc.Set(&memcache.Item{
				Key:        metaCacheKey(owner),
				Value:      serialized,
				Expiration: metaCacheTTL,
			})
		}
	}
	return meta, nil
}
