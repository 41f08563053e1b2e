package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"type:text;not null" json:"name"`
	Email      string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	APIKeyHash string    `gorm:"column:api_key_hash;type:text;not null;uniqueIndex" json:"-"`

	// Sum of exif file sizes for all assets the user currently owns.
	QuotaUsageInBytes int64 `gorm:"type:bigint;not null;default:0" json:"quota_usage_in_bytes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
