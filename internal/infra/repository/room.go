package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/database/models"
)

// RoomRepository reads door state and access-list entries.
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) GetDoor(ctx context.Context, owner string) (domain.RoomDoor, error) {
	var row models.RoomDoor
	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RoomDoor{}, domain.NotFoundError{Resource: "room door"}
		}
		return domain.RoomDoor{}, err
	}
	return domain.RoomDoor{Owner: row.Owner, State: row.State}, nil
}

func (r *RoomRepository) GetAccessEntry(ctx context.Context, owner, visitor string) (domain.RoomAccessEntry, error) {
	var row models.RoomAccessEntry
	err := r.db.WithContext(ctx).
		Where("owner = ? AND visitor = ?", owner, visitor).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RoomAccessEntry{}, domain.NotFoundError{Resource: "room access entry"}
		}
		return domain.RoomAccessEntry{}, err
	}
	return domain.RoomAccessEntry{Owner: row.Owner, Visitor: row.Visitor, Entry: row.Entry}, nil
}
