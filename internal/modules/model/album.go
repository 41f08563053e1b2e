package model

import (
	"time"

	"github.com/google/uuid"
)

type Album struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name    string    `gorm:"type:text;not null" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Owner  User    `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Assets []Asset `gorm:"many2many:album_assets;" json:"assets,omitempty"`
}

func (Album) TableName() string { return "albums" }
