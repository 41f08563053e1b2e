package model

import (
	"time"

	"github.com/google/uuid"
)

// Stack groups burst shots or duplicates under one primary asset. A stack
// always has at least two members; memberships dropping below that dissolve
// the stack rather than leaving it around.
type Stack struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Always one of the member asset ids.
	PrimaryAssetID uuid.UUID `gorm:"type:uuid;not null" json:"primary_asset_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Assets []Asset `gorm:"foreignKey:StackID;references:ID" json:"assets,omitempty"`
}

func (Stack) TableName() string { return "asset_stacks" }

// MemberIDs returns the loaded member ids in load order.
func (s *Stack) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Assets))
	for _, a := range s.Assets {
		ids = append(ids, a.ID)
	}
	return ids
}
