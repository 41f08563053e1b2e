package repo

import (
	"context"

	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessRepo answers ownership questions for permission checks.
type AccessRepo interface {
	CountOwnedAssets(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	OwnsAlbum(ctx context.Context, userID uuid.UUID, albumID uuid.UUID) (bool, error)
}

type accessRepo struct{ db *gorm.DB }

func NewAccessRepo(db *gorm.DB) AccessRepo {
	return &accessRepo{db: db}
}

func (r *accessRepo) CountOwnedAssets(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Asset{}).
		Where("owner_id = ? AND id IN ?", userID, ids).
		Count(&n).Error
	return n, err
}

func (r *accessRepo) OwnsAlbum(ctx context.Context, userID uuid.UUID, albumID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Album{}).
		Where("owner_id = ? AND id = ?", userID, albumID).
		Count(&n).Error
	return n > 0, err
}
