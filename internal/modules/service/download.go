package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/framekeep/framekeep/internal/config"
	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/framekeep/framekeep/internal/modules/repo"
	"github.com/framekeep/framekeep/internal/pkg/apperr"
	"github.com/framekeep/framekeep/internal/pkg/paging"
	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"
)

// ArchiveStore is the slice of the blob store the download service needs.
type ArchiveStore interface {
	OpenObject(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

// DownloadInfoInput selects the assets to size into archives. Exactly one
// selector is honored, in the order AssetIDs, AlbumID, UserID.
type DownloadInfoInput struct {
	AssetIDs []uuid.UUID
	AlbumID  *uuid.UUID
	UserID   *uuid.UUID

	// ArchiveSize overrides the configured target; zero keeps the default.
	ArchiveSize int64
}

type DownloadArchive struct {
	Size     int64       `json:"size"`
	AssetIDs []uuid.UUID `json:"asset_ids"`
}

type DownloadInfo struct {
	TotalSize int64             `json:"total_size"`
	Archives  []DownloadArchive `json:"archives"`
}

type DownloadService interface {
	// GetDownloadInfo partitions the selection into size-bounded archives.
	GetDownloadInfo(ctx context.Context, userID uuid.UUID, in DownloadInfoInput) (*DownloadInfo, error)
	// DownloadArchive streams one zip container of the given originals. The
	// caller owns the returned reader; the container is never buffered
	// whole.
	DownloadArchive(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (io.ReadCloser, error)
}

type downloadService struct {
	assets repo.AssetRepo
	access AccessChecker
	store  ArchiveStore
	cfg    *config.Config
	log    *zap.Logger
}

func NewDownloadService(assets repo.AssetRepo, access AccessChecker, store ArchiveStore, cfg *config.Config, log *zap.Logger) DownloadService {
	return &downloadService{
		assets: assets,
		access: access,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
}

// pageSource yields asset pages until exhausted (empty page).
type pageSource func(ctx context.Context) ([]model.Asset, error)

func (s *downloadService) selectSource(ctx context.Context, userID uuid.UUID, in DownloadInfoInput) (pageSource, error) {
	pageSize := s.cfg.Download.PageSize
	if pageSize <= 0 {
		pageSize = 2500
	}

	switch {
	case len(in.AssetIDs) > 0:
		ids := uniqueIDs(in.AssetIDs)
		if err := s.access.RequirePermission(ctx, userID, PermAssetDownload, ids); err != nil {
			return nil, err
		}
		offset := 0
		return func(ctx context.Context) ([]model.Asset, error) {
			if offset >= len(ids) {
				return nil, nil
			}
			end := min(offset+pageSize, len(ids))
			chunk := ids[offset:end]
			offset = end
			return s.assets.GetByIDs(ctx, chunk)
		}, nil

	case in.AlbumID != nil:
		albumID := *in.AlbumID
		if err := s.access.RequireAlbumPermission(ctx, userID, PermAlbumDownload, albumID); err != nil {
			return nil, err
		}
		pager := paging.NewPager(
			func(ctx context.Context, afterID uuid.UUID, limit int) ([]model.Asset, error) {
				return s.assets.PageByAlbum(ctx, albumID, afterID, limit)
			},
			func(a model.Asset) uuid.UUID { return a.ID },
			pageSize,
		)
		return pager.Next, nil

	case in.UserID != nil:
		if *in.UserID != userID {
			return nil, fmt.Errorf("download for user %s: %w", *in.UserID, apperr.ErrForbidden)
		}
		pager := paging.NewPager(
			func(ctx context.Context, afterID uuid.UUID, limit int) ([]model.Asset, error) {
				return s.assets.PageByOwner(ctx, userID, afterID, limit)
			},
			func(a model.Asset) uuid.UUID { return a.ID },
			pageSize,
		)
		return pager.Next, nil
	}

	return nil, fmt.Errorf("no asset ids, album id or user id given: %w", apperr.ErrInvalidRequest)
}

func (s *downloadService) GetDownloadInfo(ctx context.Context, userID uuid.UUID, in DownloadInfoInput) (*DownloadInfo, error) {
	source, err := s.selectSource(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	target := in.ArchiveSize
	if target <= 0 {
		target, err = s.cfg.ArchiveTargetBytes()
		if err != nil {
			return nil, err
		}
	}

	info := &DownloadInfo{}
	current := DownloadArchive{}

	flush := func() {
		if len(current.AssetIDs) == 0 {
			return
		}
		info.TotalSize += current.Size
		info.Archives = append(info.Archives, current)
		current = DownloadArchive{}
	}
	add := func(id uuid.UUID, size int64) {
		current.AssetIDs = append(current.AssetIDs, id)
		current.Size += size
		// Exceeding the target closes the archive; reaching it does not.
		if current.Size > target {
			flush()
		}
	}

	for {
		page, err := source(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan assets: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for _, a := range page {
			// Trashed assets are invisible to downloads until restored.
			if a.IsTrashed() {
				continue
			}
			add(a.ID, a.FileSize())
			if a.LivePhotoVideoID == nil {
				continue
			}
			// Motion companions always travel with their primary.
			companion, err := s.assets.GetByID(ctx, *a.LivePhotoVideoID)
			if err != nil {
				return nil, fmt.Errorf("load live photo companion: %w", err)
			}
			if companion != nil {
				add(companion.ID, companion.FileSize())
			}
		}
	}
	flush()

	s.log.Sugar().Debugw("download info computed",
		"archives", len(info.Archives), "total", humanize.IBytes(uint64(info.TotalSize)))
	return info, nil
}

func (s *downloadService) DownloadArchive(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (io.ReadCloser, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no asset ids given: %w", apperr.ErrInvalidRequest)
	}
	if err := s.access.RequirePermission(ctx, userID, PermAssetDownload, ids); err != nil {
		return nil, err
	}
	assets, err := s.assets.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		zw := zip.NewWriter(pw)
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, flate.BestSpeed)
		})

		names := make(map[string]int)
		for _, a := range assets {
			if a.IsTrashed() {
				continue
			}
			w, err := zw.CreateHeader(&zip.FileHeader{
				Name:   uniqueArchiveName(names, a.OriginalFileName),
				Method: zip.Deflate,
			})
			if err != nil {
				pw.CloseWithError(fmt.Errorf("create zip entry: %w", err))
				return
			}
			body, _, err := s.store.OpenObject(ctx, a.OriginalPath)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			_, err = io.Copy(w, body)
			body.Close()
			if err != nil {
				pw.CloseWithError(fmt.Errorf("stream %s: %w", a.OriginalPath, err))
				return
			}
		}
		if err := zw.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()
	return pr, nil
}

// uniqueArchiveName disambiguates repeated original filenames by suffixing
// +N before the extension.
func uniqueArchiveName(names map[string]int, name string) string {
	n := names[name]
	names[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s+%d%s", strings.TrimSuffix(name, ext), n, ext)
}
