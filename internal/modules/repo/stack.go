package repo

import (
	"context"
	"errors"

	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StackRepo interface {
	// GetByID loads a stack with members ordered (created_at, id).
	// Returns (nil, nil) when the stack does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Stack, error)
	Create(ctx context.Context, ownerID, primaryAssetID uuid.UUID, memberIDs []uuid.UUID) (*model.Stack, error)
	// SetMembers rewrites membership and the primary in one transaction:
	// the member assets are re-pointed at the stack and the stack row is
	// updated as a single atomic unit.
	SetMembers(ctx context.Context, stackID, primaryAssetID uuid.UUID, memberIDs []uuid.UUID) error
	SetPrimary(ctx context.Context, stackID, primaryAssetID uuid.UUID) error
	// Delete dissolves a stack: members' stack_id is cleared and the row
	// removed in the same transaction, so no member is ever left dangling.
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, ids []uuid.UUID) error
}

type stackRepo struct{ db *gorm.DB }

func NewStackRepo(db *gorm.DB) StackRepo {
	return &stackRepo{db: db}
}

func (r *stackRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Stack, error) {
	var s model.Stack
	err := r.db.WithContext(ctx).
		Preload("Assets", stackMemberOrder).
		First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stackRepo) Create(ctx context.Context, ownerID, primaryAssetID uuid.UUID, memberIDs []uuid.UUID) (*model.Stack, error) {
	s := &model.Stack{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		PrimaryAssetID: primaryAssetID,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		return tx.Model(&model.Asset{}).
			Where("id IN ?", memberIDs).
			Update("stack_id", s.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *stackRepo) SetMembers(ctx context.Context, stackID, primaryAssetID uuid.UUID, memberIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Asset{}).
			Where("id IN ?", memberIDs).
			Update("stack_id", stackID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Stack{}).
			Where("id = ?", stackID).
			Update("primary_asset_id", primaryAssetID).Error
	})
}

func (r *stackRepo) SetPrimary(ctx context.Context, stackID, primaryAssetID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Stack{}).
		Where("id = ?", stackID).
		Update("primary_asset_id", primaryAssetID).Error
}

func (r *stackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteAll(ctx, []uuid.UUID{id})
}

func (r *stackRepo) DeleteAll(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	// Explicit two-step cascade: clear member stack pointers, then drop the
	// rows, in one transaction.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Asset{}).
			Where("stack_id IN ?", ids).
			Update("stack_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Stack{}, "id IN ?", ids).Error
	})
}
