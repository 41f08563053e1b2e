package service

import (
	"context"
	"fmt"

	"github.com/framekeep/framekeep/internal/infra/notify"
	"github.com/framekeep/framekeep/internal/infra/queue"
	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/framekeep/framekeep/internal/modules/repo"
	"github.com/framekeep/framekeep/internal/pkg/paging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const trashPageSize = 1000

type TrashService interface {
	// RestoreAll brings every trashed asset of the caller back, page by
	// page. Pages are independent: progress made before a failure stays.
	RestoreAll(ctx context.Context, userID uuid.UUID) (int, error)
	// EmptyAll queues permanent deletion for every trashed asset of the
	// caller, page by page.
	EmptyAll(ctx context.Context, userID uuid.UUID) (int, error)
}

type trashService struct {
	assets repo.AssetRepo
	jobs   queue.Dispatcher
	events notify.Sender
	log    *zap.Logger
}

func NewTrashService(assets repo.AssetRepo, jobs queue.Dispatcher, events notify.Sender, log *zap.Logger) TrashService {
	return &trashService{
		assets: assets,
		jobs:   jobs,
		events: events,
		log:    log,
	}
}

func (s *trashService) pager(userID uuid.UUID) *paging.Pager[model.Asset] {
	return paging.NewPager(
		func(ctx context.Context, afterID uuid.UUID, limit int) ([]model.Asset, error) {
			return s.assets.PageTrashedByOwner(ctx, userID, afterID, limit)
		},
		func(a model.Asset) uuid.UUID { return a.ID },
		trashPageSize,
	)
}

func (s *trashService) RestoreAll(ctx context.Context, userID uuid.UUID) (int, error) {
	pager := s.pager(userID)
	total := 0
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return total, fmt.Errorf("scan trash: %w", err)
		}
		if len(page) == 0 {
			break
		}
		ids := make([]uuid.UUID, 0, len(page))
		for _, a := range page {
			ids = append(ids, a.ID)
		}
		if err := s.assets.RestoreAll(ctx, ids); err != nil {
			return total, fmt.Errorf("restore page: %w", err)
		}
		// One notification per page, carrying that page's ids.
		s.events.Send(ctx, notify.EventAssetRestore, userID, ids)
		total += len(ids)
	}
	s.log.Sugar().Infow("trash restored", "user", userID, "count", total)
	return total, nil
}

func (s *trashService) EmptyAll(ctx context.Context, userID uuid.UUID) (int, error) {
	pager := s.pager(userID)
	total := 0
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return total, fmt.Errorf("scan trash: %w", err)
		}
		if len(page) == 0 {
			break
		}
		jobs := make([]queue.Job, 0, len(page))
		for _, a := range page {
			jobs = append(jobs, queue.Job{Kind: queue.KindAssetDelete, AssetID: a.ID})
		}
		if err := s.jobs.QueueAll(ctx, jobs); err != nil {
			return total, fmt.Errorf("queue deletions: %w", err)
		}
		total += len(jobs)
	}
	s.log.Sugar().Infow("trash emptied", "user", userID, "count", total)
	return total, nil
}
