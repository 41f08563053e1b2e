package notify

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event kinds pushed to connected clients.
const (
	EventAssetUpload  = "asset.upload"
	EventAssetUpdate  = "asset.update"
	EventAssetDelete  = "asset.delete"
	EventAssetTrash   = "asset.trash"
	EventAssetRestore = "asset.restore"
)

// Sender broadcasts best-effort events to one owner's clients.
type Sender interface {
	Send(ctx context.Context, event string, ownerID uuid.UUID, ids []uuid.UUID)
}

type envelope struct {
	Event string      `json:"event"`
	IDs   []uuid.UUID `json:"ids"`
}

type redisSender struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedisSender publishes events on a per-owner pub/sub channel. Delivery is
// fire-and-forget; failures are logged, never propagated.
func NewRedisSender(rdb *redis.Client, log *zap.Logger) Sender {
	return &redisSender{rdb: rdb, log: log}
}

func (s *redisSender) Send(ctx context.Context, event string, ownerID uuid.UUID, ids []uuid.UUID) {
	body, err := sonic.Marshal(envelope{Event: event, IDs: ids})
	if err != nil {
		s.log.Sugar().Warnw("marshal event", "event", event, "err", err)
		return
	}
	channel := fmt.Sprintf("events:%s", ownerID)
	if err := s.rdb.Publish(ctx, channel, body).Err(); err != nil {
		s.log.Sugar().Warnw("publish event", "event", event, "owner", ownerID, "err", err)
	}
}
