package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
)

// Consumer reads booking events and appends one audit line per event to
// a log file (logs/booking.log by default).
type Consumer struct {
	url     string
	queue   string
	logPath string

	mu sync.Mutex // serializes file appends
}

func NewConsumer(cfg config.AMQPConfig, logPath string) *Consumer {
	if logPath == "" {
		logPath = filepath.Join("logs", "booking.log")
	}
	return &Consumer{url: cfg.URL, queue: cfg.Queue, logPath: logPath}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with capped exponential backoff.  It returns ctx.Err()
// on shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			logger.Warn("booking-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("booking-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("booking-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				logger.Error("booking-consumer: handle message failed", zap.Error(err), zap.String("message_id", d.MessageId))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends its audit line.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == 0 {
		return errors.New("event without type or booking id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders the single-line audit entry for ev.
func FormatLine(ev BookingEvent) string {
	line := fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | show_id=%d | seats=[%s] | num_seats=%d | total=%.2f",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.BookingID, ev.UserID, ev.ShowID,
		strings.Join(ev.Seats, ","), ev.NumSeats, ev.TotalAmount)
	if ev.PaymentID != "" {
		line += " | payment_id=" + ev.PaymentID
	}
	return line + "\n"
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
