package repo

import (
	"context"

	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepo interface {
	// AddUsage adjusts the owner's storage accounting by delta bytes,
	// clamped at zero.
	AddUsage(ctx context.Context, userID uuid.UUID, delta int64) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) AddUsage(ctx context.Context, userID uuid.UUID, delta int64) error {
	if delta == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("quota_usage_in_bytes", gorm.Expr("GREATEST(quota_usage_in_bytes + ?, 0)", delta)).Error
}
