package service

import (
	"context"
	"io"
	"time"

	"github.com/framekeep/framekeep/internal/infra/queue"
	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAssetRepo is a mock implementation of AssetRepo
type MockAssetRepo struct {
	mock.Mock
}

func (m *MockAssetRepo) Create(ctx context.Context, a *model.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Asset, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

func (m *MockAssetRepo) UpdateAll(ctx context.Context, ids []uuid.UUID, fields map[string]any) error {
	args := m.Called(ctx, ids, fields)
	return args.Error(0)
}

func (m *MockAssetRepo) Remove(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssetRepo) SoftDeleteAll(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockAssetRepo) RestoreAll(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockAssetRepo) ListByOwnerWithCursor(ctx context.Context, ownerID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.Asset, error) {
	args := m.Called(ctx, ownerID, afterCreatedAt, afterID, limit, timeDesc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

func (m *MockAssetRepo) PageByOwner(ctx context.Context, ownerID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error) {
	args := m.Called(ctx, ownerID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

func (m *MockAssetRepo) PageByAlbum(ctx context.Context, albumID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error) {
	args := m.Called(ctx, albumID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

func (m *MockAssetRepo) PageTrashedByOwner(ctx context.Context, ownerID uuid.UUID, afterID uuid.UUID, limit int) ([]model.Asset, error) {
	args := m.Called(ctx, ownerID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

func (m *MockAssetRepo) PageTrashedBefore(ctx context.Context, cutoff time.Time, afterID uuid.UUID, limit int) ([]model.Asset, error) {
	args := m.Called(ctx, cutoff, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

// MockStackRepo is a mock implementation of StackRepo
type MockStackRepo struct {
	mock.Mock
}

func (m *MockStackRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Stack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stack), args.Error(1)
}

func (m *MockStackRepo) Create(ctx context.Context, ownerID, primaryAssetID uuid.UUID, memberIDs []uuid.UUID) (*model.Stack, error) {
	args := m.Called(ctx, ownerID, primaryAssetID, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stack), args.Error(1)
}

func (m *MockStackRepo) SetMembers(ctx context.Context, stackID, primaryAssetID uuid.UUID, memberIDs []uuid.UUID) error {
	args := m.Called(ctx, stackID, primaryAssetID, memberIDs)
	return args.Error(0)
}

func (m *MockStackRepo) SetPrimary(ctx context.Context, stackID, primaryAssetID uuid.UUID) error {
	args := m.Called(ctx, stackID, primaryAssetID)
	return args.Error(0)
}

func (m *MockStackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStackRepo) DeleteAll(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockUserRepo is a mock implementation of UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) AddUsage(ctx context.Context, userID uuid.UUID, delta int64) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}

// MockAccessChecker is a mock implementation of AccessChecker
type MockAccessChecker struct {
	mock.Mock
}

func (m *MockAccessChecker) RequirePermission(ctx context.Context, userID uuid.UUID, perm Permission, ids []uuid.UUID) error {
	args := m.Called(ctx, userID, perm, ids)
	return args.Error(0)
}

func (m *MockAccessChecker) RequireAlbumPermission(ctx context.Context, userID uuid.UUID, perm Permission, albumID uuid.UUID) error {
	args := m.Called(ctx, userID, perm, albumID)
	return args.Error(0)
}

// MockDispatcher is a mock implementation of queue.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Queue(ctx context.Context, job queue.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockDispatcher) QueueAll(ctx context.Context, jobs []queue.Job) error {
	args := m.Called(ctx, jobs)
	return args.Error(0)
}

// MockSender is a mock implementation of notify.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, event string, ownerID uuid.UUID, ids []uuid.UUID) {
	m.Called(ctx, event, ownerID, ids)
}

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

// MockArchiveStore is a mock implementation of ArchiveStore
type MockArchiveStore struct {
	mock.Mock
}

func (m *MockArchiveStore) OpenObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(int64), args.Error(2)
}
