package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/framekeep/framekeep/internal/infra/notify"
	"github.com/framekeep/framekeep/internal/infra/queue"
	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func makeTrashedAssets(n int) []model.Asset {
	assets := make([]model.Asset, 0, n)
	for i := 0; i < n; i++ {
		assets = append(assets, model.Asset{
			ID: uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1)),
		})
	}
	return assets
}

func TestTrashService_RestoreAll(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("restores page by page with one notification per page", func(t *testing.T) {
		fullPage := makeTrashedAssets(trashPageSize)
		lastOfFull := fullPage[len(fullPage)-1].ID
		tail := makeTrashedAssets(3)

		assets := &MockAssetRepo{}
		events := &MockSender{}

		assets.On("PageTrashedByOwner", ctx, userID, uuid.Nil, trashPageSize).Return(fullPage, nil)
		assets.On("PageTrashedByOwner", ctx, userID, lastOfFull, trashPageSize).Return(tail, nil)
		assets.On("RestoreAll", ctx, mock.MatchedBy(func(ids []uuid.UUID) bool {
			return len(ids) == trashPageSize
		})).Return(nil).Once()
		assets.On("RestoreAll", ctx, mock.MatchedBy(func(ids []uuid.UUID) bool {
			return len(ids) == 3
		})).Return(nil).Once()
		events.On("Send", ctx, notify.EventAssetRestore, userID, mock.Anything).Return().Twice()

		svc := NewTrashService(assets, &MockDispatcher{}, events, zap.NewNop())

		total, err := svc.RestoreAll(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, trashPageSize+3, total)
		assets.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("empty trash restores nothing", func(t *testing.T) {
		assets := &MockAssetRepo{}
		assets.On("PageTrashedByOwner", ctx, userID, uuid.Nil, trashPageSize).Return([]model.Asset{}, nil)

		svc := NewTrashService(assets, &MockDispatcher{}, &MockSender{}, zap.NewNop())

		total, err := svc.RestoreAll(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, 0, total)
	})

	t.Run("failure keeps the progress already made", func(t *testing.T) {
		fullPage := makeTrashedAssets(trashPageSize)
		lastOfFull := fullPage[len(fullPage)-1].ID

		assets := &MockAssetRepo{}
		events := &MockSender{}

		assets.On("PageTrashedByOwner", ctx, userID, uuid.Nil, trashPageSize).Return(fullPage, nil)
		assets.On("RestoreAll", ctx, mock.Anything).Return(nil).Once()
		events.On("Send", ctx, notify.EventAssetRestore, userID, mock.Anything).Return().Once()
		assets.On("PageTrashedByOwner", ctx, userID, lastOfFull, trashPageSize).
			Return(nil, errors.New("database error"))

		svc := NewTrashService(assets, &MockDispatcher{}, events, zap.NewNop())

		total, err := svc.RestoreAll(ctx, userID)

		assert.Error(t, err)
		assert.Equal(t, trashPageSize, total)
	})
}

func TestTrashService_EmptyAll(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("queues one deletion job per trashed asset", func(t *testing.T) {
		trashed := makeTrashedAssets(3)

		assets := &MockAssetRepo{}
		jobs := &MockDispatcher{}

		assets.On("PageTrashedByOwner", ctx, userID, uuid.Nil, trashPageSize).Return(trashed, nil)
		jobs.On("QueueAll", ctx, mock.MatchedBy(func(queued []queue.Job) bool {
			if len(queued) != 3 {
				return false
			}
			for i, j := range queued {
				if j.Kind != queue.KindAssetDelete || j.AssetID != trashed[i].ID {
					return false
				}
			}
			return true
		})).Return(nil)

		svc := NewTrashService(assets, jobs, &MockSender{}, zap.NewNop())

		total, err := svc.EmptyAll(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, 3, total)
		jobs.AssertExpectations(t)
	})

	t.Run("queue failure propagates", func(t *testing.T) {
		assets := &MockAssetRepo{}
		jobs := &MockDispatcher{}

		assets.On("PageTrashedByOwner", ctx, userID, uuid.Nil, trashPageSize).
			Return(makeTrashedAssets(1), nil)
		jobs.On("QueueAll", ctx, mock.Anything).Return(errors.New("broker down"))

		svc := NewTrashService(assets, jobs, &MockSender{}, zap.NewNop())

		total, err := svc.EmptyAll(ctx, userID)

		assert.Error(t, err)
		assert.Equal(t, 0, total)
	})
}
