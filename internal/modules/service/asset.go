package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/framekeep/framekeep/internal/config"
	"github.com/framekeep/framekeep/internal/infra/notify"
	"github.com/framekeep/framekeep/internal/infra/queue"
	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/framekeep/framekeep/internal/modules/repo"
	"github.com/framekeep/framekeep/internal/pkg/apperr"
	"github.com/framekeep/framekeep/internal/pkg/paging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const trashSweepPageSize = 1000

// ObjectStore is the slice of the blob store the asset service needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
}

type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	LibraryID   *uuid.UUID
	Body        io.Reader
}

type ListAssetsInput struct {
	Limit    int    `json:"limit"`
	Cursor   string `json:"cursor"`
	TimeDesc bool   `json:"time_desc"`
}

type ListAssetsOutput struct {
	Items      []model.Asset `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

type AssetService interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Asset, error)
	// List pages the caller's live assets with an opaque keyset cursor.
	List(ctx context.Context, userID uuid.UUID, in ListAssetsInput) (*ListAssetsOutput, error)
	PresignOriginal(ctx context.Context, userID, id uuid.UUID) (string, error)
	// Upload stores one original object and registers the asset row,
	// charging the size against the owner's quota.
	Upload(ctx context.Context, userID uuid.UUID, in UploadInput) (*model.Asset, error)
	// DeleteAll trashes the ids, or with force queues permanent deletion
	// immediately, bypassing the trash.
	DeleteAll(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, force bool) error
	RestoreAll(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error

	// HandleAssetDeletion runs the per-asset deletion state machine. It
	// reports whether the asset was purged; an absent asset is a normal
	// outcome, not an error, so re-driving a job is safe.
	HandleAssetDeletion(ctx context.Context, job queue.Job) (bool, error)
	// HandleTrashSweep queues a deletion job for every asset trashed before
	// the retention cutoff, one page at a time.
	HandleTrashSweep(ctx context.Context) (int, error)
}

type assetService struct {
	assets repo.AssetRepo
	stacks repo.StackRepo
	users  repo.UserRepo
	access AccessChecker
	jobs   queue.Dispatcher
	events notify.Sender
	store  ObjectStore
	cfg    *config.Config
	log    *zap.Logger
}

func NewAssetService(
	assets repo.AssetRepo,
	stacks repo.StackRepo,
	users repo.UserRepo,
	access AccessChecker,
	jobs queue.Dispatcher,
	events notify.Sender,
	store ObjectStore,
	cfg *config.Config,
	log *zap.Logger,
) AssetService {
	return &assetService{
		assets: assets,
		stacks: stacks,
		users:  users,
		access: access,
		jobs:   jobs,
		events: events,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
}

func (s *assetService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Asset, error) {
	if err := s.access.RequirePermission(ctx, userID, PermAssetRead, []uuid.UUID{id}); err != nil {
		return nil, err
	}
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", id, apperr.ErrNotFound)
	}
	return asset, nil
}

func (s *assetService) List(ctx context.Context, userID uuid.UUID, in ListAssetsInput) (*ListAssetsOutput, error) {
	if in.Limit <= 0 {
		in.Limit = 250
	}

	// An empty cursor starts from the beginning.
	var afterT time.Time
	var afterID uuid.UUID
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err, apperr.ErrInvalidRequest)
		}
	}

	// Query limit+1 to detect has_more without a count.
	assets, err := s.assets.ListByOwnerWithCursor(ctx, userID, afterT, afterID, in.Limit+1, in.TimeDesc)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	out := &ListAssetsOutput{Items: assets}
	if len(assets) > in.Limit {
		out.HasMore = true
		out.Items = assets[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	return out, nil
}

func (s *assetService) PresignOriginal(ctx context.Context, userID, id uuid.UUID) (string, error) {
	asset, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	expire := time.Duration(s.cfg.S3.PresignExpireSec) * time.Second
	if expire <= 0 {
		expire = 15 * time.Minute
	}
	return s.store.PresignGet(ctx, asset.OriginalPath, expire)
}

func (s *assetService) Upload(ctx context.Context, userID uuid.UUID, in UploadInput) (*model.Asset, error) {
	if in.FileName == "" || in.Body == nil {
		return nil, fmt.Errorf("file name and body are required: %w", apperr.ErrInvalidRequest)
	}
	if in.Size <= 0 {
		return nil, fmt.Errorf("file size must be positive: %w", apperr.ErrInvalidRequest)
	}

	id := uuid.New()
	key := fmt.Sprintf("upload/%s/%s%s", userID, id, strings.ToLower(filepath.Ext(in.FileName)))

	// The checksum is computed on the way through, so the body streams to the
	// store exactly once.
	hasher := sha256.New()
	if err := s.store.Upload(ctx, key, in.ContentType, io.TeeReader(in.Body, hasher)); err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}

	asset := &model.Asset{
		ID:               id,
		OwnerID:          userID,
		LibraryID:        in.LibraryID,
		OriginalPath:     key,
		OriginalFileName: in.FileName,
		Checksum:         hex.EncodeToString(hasher.Sum(nil)),
		IsVisible:        true,
		Exif:             &model.Exif{AssetID: id, FileSizeInByte: in.Size},
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("register asset: %w", err)
	}
	if err := s.users.AddUsage(ctx, userID, in.Size); err != nil {
		return nil, fmt.Errorf("update usage for %s: %w", userID, err)
	}
	s.events.Send(ctx, notify.EventAssetUpload, userID, []uuid.UUID{id})
	return asset, nil
}

func (s *assetService) DeleteAll(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, force bool) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return fmt.Errorf("no asset ids given: %w", apperr.ErrInvalidRequest)
	}
	if err := s.access.RequirePermission(ctx, userID, PermAssetDelete, ids); err != nil {
		return err
	}

	if force {
		jobs := make([]queue.Job, 0, len(ids))
		for _, id := range ids {
			jobs = append(jobs, queue.Job{Kind: queue.KindAssetDelete, AssetID: id})
		}
		return s.jobs.QueueAll(ctx, jobs)
	}

	if err := s.assets.SoftDeleteAll(ctx, ids); err != nil {
		return fmt.Errorf("trash assets: %w", err)
	}
	s.events.Send(ctx, notify.EventAssetTrash, userID, ids)
	return nil
}

func (s *assetService) RestoreAll(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return fmt.Errorf("no asset ids given: %w", apperr.ErrInvalidRequest)
	}
	if err := s.access.RequirePermission(ctx, userID, PermAssetRestore, ids); err != nil {
		return err
	}
	if err := s.assets.RestoreAll(ctx, ids); err != nil {
		return fmt.Errorf("restore assets: %w", err)
	}
	s.events.Send(ctx, notify.EventAssetRestore, userID, ids)
	return nil
}

func (s *assetService) HandleAssetDeletion(ctx context.Context, job queue.Job) (bool, error) {
	asset, err := s.assets.GetByID(ctx, job.AssetID)
	if err != nil {
		return false, fmt.Errorf("load asset %s: %w", job.AssetID, err)
	}
	if asset == nil {
		// Already purged; at-least-once delivery makes this a normal case.
		return false, nil
	}

	// Internal cleanup must never touch externally-owned files. An asset
	// without a library reference is treated the same as an external one.
	external := asset.Library == nil || asset.Library.IsExternal()
	if external && !job.FromExternal {
		s.log.Sugar().Debugw("skipping deletion of external asset", "asset", asset.ID)
		return false, nil
	}

	if err := s.resolveStack(ctx, asset); err != nil {
		return false, err
	}

	size := asset.FileSize()
	if err := s.assets.Remove(ctx, asset.ID); err != nil {
		return false, fmt.Errorf("remove asset %s: %w", asset.ID, err)
	}
	if err := s.users.AddUsage(ctx, asset.OwnerID, -size); err != nil {
		return false, fmt.Errorf("update usage for %s: %w", asset.OwnerID, err)
	}
	s.events.Send(ctx, notify.EventAssetDelete, asset.OwnerID, []uuid.UUID{asset.ID})

	followUps := make([]queue.Job, 0, 2)
	if asset.LivePhotoVideoID != nil {
		followUps = append(followUps, queue.Job{
			Kind:         queue.KindAssetDelete,
			AssetID:      *asset.LivePhotoVideoID,
			FromExternal: job.FromExternal,
		})
	}
	paths := asset.DerivedPaths()
	if !job.FromExternal {
		paths = append(paths, asset.OriginalPath)
	}
	if len(paths) > 0 {
		followUps = append(followUps, queue.Job{Kind: queue.KindFileDelete, Paths: paths})
	}
	if err := s.jobs.QueueAll(ctx, followUps); err != nil {
		return false, fmt.Errorf("queue follow-ups for %s: %w", asset.ID, err)
	}
	return true, nil
}

// resolveStack keeps the stack invariants ahead of the purge: a primary with
// at least two surviving siblings hands off to the first of them, anything
// smaller dissolves the stack.
func (s *assetService) resolveStack(ctx context.Context, asset *model.Asset) error {
	if asset.StackID == nil || asset.Stack == nil {
		return nil
	}
	stack := asset.Stack
	if stack.PrimaryAssetID != asset.ID {
		// Non-primary members drop out via the store's relational cleanup.
		return nil
	}
	if len(stack.Assets) > 2 {
		for _, sibling := range stack.Assets {
			if sibling.ID == asset.ID {
				continue
			}
			if err := s.stacks.SetPrimary(ctx, stack.ID, sibling.ID); err != nil {
				return fmt.Errorf("promote %s in stack %s: %w", sibling.ID, stack.ID, err)
			}
			return nil
		}
	}
	if err := s.stacks.Delete(ctx, stack.ID); err != nil {
		return fmt.Errorf("dissolve stack %s: %w", stack.ID, err)
	}
	return nil
}

func (s *assetService) HandleTrashSweep(ctx context.Context) (int, error) {
	// Retention is resolved once per sweep; disabled trash means everything
	// already trashed is eligible immediately.
	days := 0
	if s.cfg.Trash.Enabled {
		days = s.cfg.Trash.RetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	pager := paging.NewPager(
		func(ctx context.Context, afterID uuid.UUID, limit int) ([]model.Asset, error) {
			return s.assets.PageTrashedBefore(ctx, cutoff, afterID, limit)
		},
		func(a model.Asset) uuid.UUID { return a.ID },
		trashSweepPageSize,
	)

	total := 0
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return total, fmt.Errorf("scan expired trash: %w", err)
		}
		if len(page) == 0 {
			break
		}
		jobs := make([]queue.Job, 0, len(page))
		for _, a := range page {
			jobs = append(jobs, queue.Job{Kind: queue.KindAssetDelete, AssetID: a.ID})
		}
		if err := s.jobs.QueueAll(ctx, jobs); err != nil {
			return total, fmt.Errorf("queue deletion jobs: %w", err)
		}
		total += len(jobs)
	}
	if total > 0 {
		s.log.Sugar().Infow("trash sweep queued deletions", "count", total, "cutoff", cutoff)
	}
	return total, nil
}
