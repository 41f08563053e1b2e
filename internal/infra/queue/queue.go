package queue

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/framekeep/framekeep/internal/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Job kinds routed through the jobs exchange.
const (
	KindAssetDelete = "asset.delete"
	KindFileDelete  = "file.delete"
)

// Job is the wire envelope for a background job. Delivery is at-least-once;
// handlers are expected to be idempotent.
type Job struct {
	Kind string `json:"kind"`

	// asset.delete
	AssetID      uuid.UUID `json:"asset_id,omitempty"`
	FromExternal bool      `json:"from_external,omitempty"`

	// file.delete
	Paths []string `json:"paths,omitempty"`
}

// Dispatcher enqueues jobs for asynchronous execution. Enqueue success means
// "will eventually run", not "has run".
type Dispatcher interface {
	Queue(ctx context.Context, job Job) error
	QueueAll(ctx context.Context, jobs []Job) error
}

type Publisher struct {
	ch       *amqp.Channel
	exchange string
	routes   map[string]string
	log      *zap.Logger
}

// NewPublisher opens a channel on the shared connection and declares the
// jobs topology (durable topic exchange, durable queue, kind bindings).
func NewPublisher(conn *amqp.Connection, cfg *config.Config, log *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	ex := cfg.RabbitMQ.ExchangeName.Jobs
	if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", ex, err)
	}
	q, err := ch.QueueDeclare(cfg.RabbitMQ.Queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", cfg.RabbitMQ.Queue, err)
	}

	routes := map[string]string{
		KindAssetDelete: cfg.RabbitMQ.RoutingKey.AssetDelete,
		KindFileDelete:  cfg.RabbitMQ.RoutingKey.FileDelete,
	}
	for _, rk := range routes {
		if err := ch.QueueBind(q.Name, rk, ex, false, nil); err != nil {
			return nil, fmt.Errorf("bind %s to %s: %w", q.Name, rk, err)
		}
	}

	return &Publisher{ch: ch, exchange: ex, routes: routes, log: log}, nil
}

func (p *Publisher) Queue(ctx context.Context, job Job) error {
	body, err := sonic.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	rk, ok := p.routes[job.Kind]
	if !ok {
		rk = job.Kind
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, rk, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", job.Kind, err)
	}
	return nil
}

func (p *Publisher) QueueAll(ctx context.Context, jobs []Job) error {
	for _, job := range jobs {
		if err := p.Queue(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) Close() error { return p.ch.Close() }
