package repo

import (
	"context"
	"errors"
	"time"

	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetRepo interface {
	// Create inserts the asset together with its exif record.
	Create(ctx context.Context, a *model.Asset) error

	// GetByID loads one asset with its stack (members included), exif and
	// library. Returns (nil, nil) when the asset does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Asset, error)
	UpdateAll(ctx context.Context, ids []uuid.UUID, fields map[string]any) error
	Remove(ctx context.Context, id uuid.UUID) error
	SoftDeleteAll(ctx context.Context, ids []uuid.UUID) error
	RestoreAll(ctx context.Context, ids []uuid.UUID) error

	// ListByOwnerWithCursor pages the owner's live assets by a
	// (created_at, id) keyset cursor.
	ListByOwnerWithCursor(ctx context.Context, ownerID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.Asset, error)

	// Keyset pages, ordered by id, strictly after afterID.
	PageByOwner(ctx context.Context, ownerID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error)
	PageByAlbum(ctx context.Context, albumID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error)
	PageTrashedByOwner(ctx context.Context, ownerID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error)
	PageTrashedBefore(ctx context.Context, cutoff time.Time, afterID uuid.UUID, limit int) ([]model.Asset, error)
}

type assetRepo struct{ db *gorm.DB }

func NewAssetRepo(db *gorm.DB) AssetRepo {
	return &assetRepo{db: db}
}

// stackMemberOrder keeps sibling promotion deterministic.
func stackMemberOrder(db *gorm.DB) *gorm.DB {
	return db.Order("assets.created_at ASC, assets.id ASC")
}

func (r *assetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assetRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	var a model.Asset
	err := r.db.WithContext(ctx).
		Preload("Stack").
		Preload("Stack.Assets", stackMemberOrder).
		Preload("Exif").
		Preload("Library").
		First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var assets []model.Asset
	err := r.db.WithContext(ctx).
		Preload("Stack").
		Preload("Stack.Assets", stackMemberOrder).
		Preload("Exif").
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&assets).Error
	return assets, err
}

func (r *assetRepo) UpdateAll(ctx context.Context, ids []uuid.UUID, fields map[string]any) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Asset{}).
		Where("id IN ?", ids).
		Updates(fields).Error
}

func (r *assetRepo) Remove(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Asset{}, "id = ?", id).Error
}

func (r *assetRepo) SoftDeleteAll(ctx context.Context, ids []uuid.UUID) error {
	return r.UpdateAll(ctx, ids, map[string]any{"trashed_at": time.Now()})
}

func (r *assetRepo) RestoreAll(ctx context.Context, ids []uuid.UUID) error {
	return r.UpdateAll(ctx, ids, map[string]any{"trashed_at": nil})
}

func (r *assetRepo) ListByOwnerWithCursor(ctx context.Context, ownerID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.Asset, error) {
	q := r.db.WithContext(ctx).
		Preload("Exif").
		Where("owner_id = ? AND trashed_at IS NULL AND is_visible", ownerID)

	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		op := ">"
		if timeDesc {
			op = "<"
		}
		q = q.Where(
			"(created_at "+op+" ?) OR (created_at = ? AND id "+op+" ?)",
			afterCreatedAt, afterCreatedAt, afterID,
		)
	}

	orderBy := "created_at ASC, id ASC"
	if timeDesc {
		orderBy = "created_at DESC, id DESC"
	}

	var assets []model.Asset
	return assets, q.Order(orderBy).Limit(limit).Find(&assets).Error
}

func (r *assetRepo) page(ctx context.Context, afterID uuid.UUID, limit int) *gorm.DB {
	q := r.db.WithContext(ctx).Preload("Exif").Order("id ASC").Limit(limit)
	if afterID != uuid.Nil {
		q = q.Where("assets.id > ?", afterID)
	}
	return q
}

func (r *assetRepo) PageByOwner(ctx context.Context, ownerID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error) {
	var assets []model.Asset
	err := r.page(ctx, afterID, limit).
		Where("owner_id = ? AND trashed_at IS NULL AND is_visible", ownerID).
		Find(&assets).Error
	return assets, err
}

func (r *assetRepo) PageByAlbum(ctx context.Context, albumID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error) {
	var assets []model.Asset
	err := r.page(ctx, afterID, limit).
		Joins("JOIN album_assets ON album_assets.asset_id = assets.id").
		Where("album_assets.album_id = ? AND assets.trashed_at IS NULL", albumID).
		Find(&assets).Error
	return assets, err
}

func (r *assetRepo) PageTrashedByOwner(ctx context.Context, ownerID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error) {
	var assets []model.Asset
	err := r.page(ctx, afterID, limit).
		Where("owner_id = ? AND trashed_at IS NOT NULL", ownerID).
		Find(&assets).Error
	return assets, err
}

func (r *assetRepo) PageTrashedBefore(ctx context.Context, cutoff time.Time, afterID uuid.UUID, limit int) ([]model.Asset, error) {
	var assets []model.Asset
	err := r.page(ctx, afterID, limit).
		Where("trashed_at IS NOT NULL AND trashed_at < ?", cutoff).
		Find(&assets).Error
	return assets, err
}
