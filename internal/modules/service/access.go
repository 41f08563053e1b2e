package service

import (
	"context"
	"fmt"

	"github.com/framekeep/framekeep/internal/modules/repo"
	"github.com/framekeep/framekeep/internal/pkg/apperr"
	"github.com/google/uuid"
)

type Permission string

const (
	PermAssetRead     Permission = "asset.read"
	PermAssetUpdate   Permission = "asset.update"
	PermAssetDelete   Permission = "asset.delete"
	PermAssetRestore  Permission = "asset.restore"
	PermAssetDownload Permission = "asset.download"
	PermAlbumDownload Permission = "album.download"
)

// AccessChecker is the permission capability the core services consume.
// A failed check is always ErrForbidden, never retried.
type AccessChecker interface {
	RequirePermission(ctx context.Context, userID uuid.UUID, perm Permission, ids []uuid.UUID) error
	RequireAlbumPermission(ctx context.Context, userID uuid.UUID, perm Permission, albumID uuid.UUID) error
}

type accessChecker struct{ r repo.AccessRepo }

// NewAccessChecker grants a permission exactly when the actor owns every
// target. Sharing/partner grants would slot in here.
func NewAccessChecker(r repo.AccessRepo) AccessChecker {
	return &accessChecker{r: r}
}

func (c *accessChecker) RequirePermission(ctx context.Context, userID uuid.UUID, perm Permission, ids []uuid.UUID) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	n, err := c.r.CountOwnedAssets(ctx, userID, ids)
	if err != nil {
		return fmt.Errorf("check %s: %w", perm, err)
	}
	if n != int64(len(ids)) {
		return fmt.Errorf("%s on %d asset(s): %w", perm, len(ids), apperr.ErrForbidden)
	}
	return nil
}

func (c *accessChecker) RequireAlbumPermission(ctx context.Context, userID uuid.UUID, perm Permission, albumID uuid.UUID) error {
	ok, err := c.r.OwnsAlbum(ctx, userID, albumID)
	if err != nil {
		return fmt.Errorf("check %s: %w", perm, err)
	}
	if !ok {
		return fmt.Errorf("%s on album %s: %w", perm, albumID, apperr.ErrForbidden)
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
