package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Asset struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Nil for assets ingested before libraries existed; treated like an
	// external library for deletion eligibility.
	LibraryID *uuid.UUID `gorm:"type:uuid;index" json:"library_id"`

	OriginalPath     string `gorm:"type:text;not null" json:"original_path"`
	OriginalFileName string `gorm:"type:text;not null" json:"original_file_name"`
	Checksum         string `gorm:"type:text;index" json:"checksum"`

	// Companion video of a motion photo, deleted in cascade with it.
	LivePhotoVideoID *uuid.UUID `gorm:"type:uuid" json:"live_photo_video_id"`

	IsOffline  bool `gorm:"not null;default:false" json:"is_offline"`
	IsReadOnly bool `gorm:"not null;default:false" json:"is_read_only"`
	IsVisible  bool `gorm:"not null;default:true" json:"is_visible"`
	IsArchived bool `gorm:"not null;default:false" json:"is_archived"`
	IsFavorite bool `gorm:"not null;default:false" json:"is_favorite"`

	// Null means active; set means the asset sits in the trash.
	TrashedAt *time.Time `gorm:"index" json:"trashed_at"`

	StackID *uuid.UUID `gorm:"type:uuid;index" json:"stack_id"`

	WebpPath         string `gorm:"type:text" json:"webp_path"`
	ResizePath       string `gorm:"type:text" json:"resize_path"`
	EncodedVideoPath string `gorm:"type:text" json:"encoded_video_path"`
	SidecarPath      string `gorm:"type:text" json:"sidecar_path"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_assets_created_id,priority:1" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Owner   User     `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Library *Library `gorm:"foreignKey:LibraryID;references:ID;constraint:OnDelete:CASCADE;" json:"library,omitempty"`
	Stack   *Stack   `gorm:"foreignKey:StackID;references:ID;constraint:OnDelete:SET NULL;" json:"stack,omitempty"`
	Exif    *Exif    `gorm:"foreignKey:AssetID;references:ID;constraint:OnDelete:CASCADE;" json:"exif,omitempty"`
}

func (Asset) TableName() string { return "assets" }

// IsTrashed reports whether the asset currently sits in the trash.
func (a *Asset) IsTrashed() bool { return a.TrashedAt != nil }

// FileSize returns the recorded original size, zero when exif is missing.
func (a *Asset) FileSize() int64 {
	if a.Exif == nil {
		return 0
	}
	return a.Exif.FileSizeInByte
}

// DerivedPaths lists every generated file recorded for the asset.
func (a *Asset) DerivedPaths() []string {
	paths := make([]string, 0, 4)
	for _, p := range []string{a.WebpPath, a.ResizePath, a.EncodedVideoPath, a.SidecarPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

type Exif struct {
	AssetID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"asset_id"`
	FileSizeInByte int64     `gorm:"type:bigint;not null;default:0" json:"file_size_in_byte"`
	Make           string    `gorm:"type:text" json:"make"`
	Model          string    `gorm:"type:text" json:"model"`

	// Full tag dump as extracted, kept verbatim.
	RawExif datatypes.JSON `gorm:"type:jsonb" json:"raw_exif,omitempty"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Exif) TableName() string { return "exif" }
