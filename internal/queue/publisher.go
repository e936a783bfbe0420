package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
)

// maxDialTimeout caps the broker dial and handshake even when the
// caller's context has a longer deadline.
const maxDialTimeout = 3 * time.Second

// AMQPPublisher publishes BookingEvents to a durable queue on the
// default exchange.  The connection and channel are opened lazily and
// reopened after any failure.  Safe for concurrent use; every wait,
// including the wait for another publisher's dial, ends when ctx does.
type AMQPPublisher struct {
	url   string
	queue string

	sem  chan struct{} // held while the connection is used or replaced
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(cfg config.AMQPConfig) *AMQPPublisher {
	return &AMQPPublisher{url: cfg.URL, queue: cfg.Queue, sem: make(chan struct{}, 1)}
}

func (p *AMQPPublisher) acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for broker connection: %w", ctx.Err())
	}
}

func (p *AMQPPublisher) release() { <-p.sem }

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.release()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// channel returns the cached channel, dialing and declaring the queue
// when needed.  The dial and AMQP handshake are bounded by ctx and by
// maxDialTimeout.  Callers hold p.sem.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	timeout := dialTimeout(ctx, maxDialTimeout)
	if timeout <= 0 {
		return nil, fmt.Errorf("dial broker: %w", context.DeadlineExceeded)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// dialTimeout is the time left before ctx's deadline, capped at limit.
func dialTimeout(ctx context.Context, limit time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < limit {
			return left
		}
	}
	return limit
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.sem <- struct{}{}
	defer p.release()
	p.reset()
	return nil
}

// NopPublisher drops every event.  Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, ev BookingEvent) error {
	logger.Debug("booking event dropped, messaging disabled", zap.String("type", ev.Type), zap.Uint64("booking_id", ev.BookingID))
	return nil
}
