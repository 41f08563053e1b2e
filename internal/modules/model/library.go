package model

import (
	"time"

	"github.com/google/uuid"
)

type LibraryType string

const (
	// LibraryTypeInternal files are uploaded into managed storage and may be
	// removed by cleanup jobs.
	LibraryTypeInternal LibraryType = "internal"
	// LibraryTypeExternal originals are watched in place and are never
	// physically deleted by internal sweeps.
	LibraryTypeExternal LibraryType = "external"
)

type Library struct {
	ID      uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name    string      `gorm:"type:text;not null" json:"name"`
	Type    LibraryType `gorm:"type:text;not null" json:"type"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (Library) TableName() string { return "libraries" }

// IsExternal reports whether originals belong to storage outside this system.
func (l *Library) IsExternal() bool { return l.Type == LibraryTypeExternal }
