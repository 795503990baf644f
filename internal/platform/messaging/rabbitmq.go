package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrChannelRequired = errors.New("rabbitmq channel is required")
	ErrPublishNacked   = errors.New("message was nacked by broker")
	ErrPublisherClosed = errors.New("rabbitmq publisher is closed")
)

const confirmBuffer = 256

// AMQPChannel is the subset of *amqp.Channel used by RabbitMQ.
type AMQPChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	GetNextPublishSeqNo() uint64
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQConfig struct {
	Exchange string
	Prefetch int
	// Requeue decides whether a failed delivery goes back to the queue.
	// Nil requeues every failure.
	Requeue func(error) bool
	// QueueExpiry, when set, lets the broker delete a queue that has had no
	// consumer for that long.
	QueueExpiry time.Duration
}

// RabbitMQ publishes envelopes to a topic exchange with publisher confirms and
// consumes them from one durable queue per consumer group and topic.
type RabbitMQ struct {
	publishCh AMQPChannel
	consumeCh AMQPChannel
	conn      *amqp.Connection
	confirms  chan amqp.Confirmation
	publishMu sync.Mutex
	cfg       RabbitMQConfig
	logger    *slog.Logger
}

// DialRabbitMQ opens a connection with dedicated publish and consume channels.
func DialRabbitMQ(url string, cfg RabbitMQConfig, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	publishCh, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq publish channel: %w", err)
	}
	consumeCh, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq consume channel: %w", err)
	}

	r, err := NewRabbitMQ(publishCh, consumeCh, cfg, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	r.conn = conn
	return r, nil
}

func NewRabbitMQ(publishCh, consumeCh AMQPChannel, cfg RabbitMQConfig, logger *slog.Logger) (*RabbitMQ, error) {
	if publishCh == nil || consumeCh == nil {
		return nil, ErrChannelRequired
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "cardsync.events"
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 32
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := publishCh.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %q: %w", cfg.Exchange, err)
	}
	if err := publishCh.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	confirms := publishCh.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer))

	return &RabbitMQ{
		publishCh: publishCh,
		consumeCh: consumeCh,
		confirms:  confirms,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Publish sends the envelope and waits for the broker confirmation of that
// message. Confirmations left over from publishes that stopped waiting are
// skipped by delivery tag.
func (r *RabbitMQ) Publish(ctx context.Context, topic string, event Envelope) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         event.EventType,
		Timestamp:    event.OccurredAt,
		AppId:        event.SourceService,
		Headers: amqp.Table{
			"fingerprint":        event.Fingerprint,
			"partition_key":      event.PartitionKey,
			"source_instance_id": event.SourceID,
		},
		Body: body,
	}

	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	tag := r.publishCh.GetNextPublishSeqNo()
	if err := r.publishCh.PublishWithContext(ctx, r.cfg.Exchange, topic, false, false, msg); err != nil {
		return fmt.Errorf("publish to %q: %w", topic, err)
	}
	if err := r.awaitConfirm(ctx, tag); err != nil {
		return err
	}

	r.logger.Debug("event published",
		"event", "rabbitmq_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"exchange", r.cfg.Exchange,
		"topic", topic,
		"event_id", event.EventID,
	)
	return nil
}

func (r *RabbitMQ) awaitConfirm(ctx context.Context, tag uint64) error {
	for {
		select {
		case confirmed, ok := <-r.confirms:
			if !ok {
				return ErrPublisherClosed
			}
			if confirmed.DeliveryTag < tag {
				r.logger.Debug("stale publish confirm skipped",
					"event", "rabbitmq_stale_confirm",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"delivery_tag", confirmed.DeliveryTag,
					"awaiting_tag", tag,
				)
				continue
			}
			if !confirmed.Ack {
				return fmt.Errorf("%w: delivery_tag=%d", ErrPublishNacked, confirmed.DeliveryTag)
			}
			return nil
		case <-ctx.Done():
			return fmt.Errorf("wait for publish confirm: %w", ctx.Err())
		}
	}
}

func (r *RabbitMQ) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, Envelope) error,
) error {
	queue := consumerGroup + "." + topic

	var args amqp.Table
	if r.cfg.QueueExpiry > 0 {
		args = amqp.Table{"x-expires": r.cfg.QueueExpiry.Milliseconds()}
	}
	if _, err := r.consumeCh.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %q: %w", queue, err)
	}
	if err := r.consumeCh.QueueBind(queue, topic, r.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %q: %w", queue, err)
	}
	if err := r.consumeCh.Qos(r.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := r.consumeCh.Consume(queue, consumerGroup, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %q: %w", queue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					r.logger.Warn("delivery stream closed",
						"event", "rabbitmq_deliveries_closed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"queue", queue,
					)
					return
				}
				r.dispatch(ctx, queue, delivery, handler)
			}
		}
	}()
	return nil
}

func (r *RabbitMQ) dispatch(
	ctx context.Context,
	queue string,
	delivery amqp.Delivery,
	handler func(context.Context, Envelope) error,
) {
	var event Envelope
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		r.logger.Error("delivery decode failed",
			"event", "rabbitmq_decode_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"queue", queue,
			"message_id", delivery.MessageId,
			"error", err.Error(),
		)
		_ = delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, event); err != nil {
		requeue := r.cfg.Requeue == nil || r.cfg.Requeue(err)
		r.logger.Error("consumer handler failed",
			"event", "rabbitmq_consume_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"queue", queue,
			"event_id", event.EventID,
			"redelivered", delivery.Redelivered,
			"requeue", requeue,
			"error", err.Error(),
		)
		_ = delivery.Nack(false, requeue)
		return
	}
	_ = delivery.Ack(false)
}

func (r *RabbitMQ) Close() error {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	errs := []error{r.publishCh.Close(), r.consumeCh.Close()}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	return errors.Join(errs...)
}
