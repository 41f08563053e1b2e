package worker

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/framekeep/framekeep/internal/config"
	"github.com/framekeep/framekeep/internal/infra/blob"
	"github.com/framekeep/framekeep/internal/infra/queue"
	"github.com/framekeep/framekeep/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Worker consumes the jobs queue. Delivery is at-least-once, so every
// handler must tolerate replays; asset deletion already does by design.
type Worker struct {
	conn   *amqp.Connection
	cfg    *config.Config
	assets service.AssetService
	store  *blob.S3Deps
	log    *zap.Logger
}

func New(conn *amqp.Connection, cfg *config.Config, assets service.AssetService, store *blob.S3Deps, log *zap.Logger) *Worker {
	return &Worker{
		conn:   conn,
		cfg:    cfg,
		assets: assets,
		store:  store,
		log:    log,
	}
}

// Run consumes jobs until the context is canceled or the channel closes.
func (w *Worker) Run(ctx context.Context) error {
	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(w.cfg.RabbitMQ.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	deliveries, err := ch.Consume(w.cfg.RabbitMQ.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", w.cfg.RabbitMQ.Queue, err)
	}

	w.log.Sugar().Infow("worker started", "queue", w.cfg.RabbitMQ.Queue, "prefetch", w.cfg.RabbitMQ.Prefetch)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.dispatch(ctx, d)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, d amqp.Delivery) {
	var job queue.Job
	if err := sonic.Unmarshal(d.Body, &job); err != nil {
		w.log.Sugar().Errorw("drop malformed job", "err", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.handle(ctx, job); err != nil {
		w.log.Sugar().Warnw("job failed, requeueing", "kind", job.Kind, "err", err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func (w *Worker) handle(ctx context.Context, job queue.Job) error {
	switch job.Kind {
	case queue.KindAssetDelete:
		purged, err := w.assets.HandleAssetDeletion(ctx, job)
		if err != nil {
			return err
		}
		w.log.Sugar().Debugw("asset deletion handled", "asset", job.AssetID, "purged", purged)
		return nil
	case queue.KindFileDelete:
		return w.store.DeleteObjects(ctx, job.Paths)
	default:
		w.log.Sugar().Warnw("unknown job kind", "kind", job.Kind)
		return nil
	}
}
