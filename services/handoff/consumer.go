package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/models"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// HandoffConsumer reads handoff events, logs them and relays them to the owner
type HandoffConsumer struct {
	reader    messageReader
	ledger    Ledger
	notifier  *Notifier
	baseDelay time.Duration
	now       func() time.Time
}

// NewHandoffConsumer creates a consumer for the handoff topic
func NewHandoffConsumer(broker, topic, group string, ledger Ledger, notifier *Notifier, baseDelay time.Duration) *HandoffConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        group,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
	return newHandoffConsumer(reader, ledger, notifier, baseDelay)
}

func newHandoffConsumer(reader messageReader, ledger Ledger, notifier *Notifier, baseDelay time.Duration) *HandoffConsumer {
	return &HandoffConsumer{
		reader:    reader,
		ledger:    ledger,
		notifier:  notifier,
		baseDelay: baseDelay,
		now:       time.Now,
	}
}

// Run consumes until ctx is done
func (hc *HandoffConsumer) Run(ctx context.Context) {
	logrus.Info("Starting handoff consumer...")

	for {
		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		msg, err := hc.reader.ReadMessage(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				logrus.Info("Handoff consumer stopped")
				return
			}
			// No messages within the read window
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logrus.Errorf("Error reading handoff message: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := hc.handle(ctx, msg.Value); err != nil {
			logrus.WithField("offset", msg.Offset).Errorf("Failed to handle handoff message: %v", err)
		}
	}
}

// handle logs one event and relays it. A failed relay is queued for retry.
func (hc *HandoffConsumer) handle(ctx context.Context, value []byte) error {
	var event models.HandoffEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal handoff event: %w", err)
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	record := &models.HandoffRecord{
		ID:             event.ID,
		Kind:           string(event.Kind),
		RestaurantSlug: event.RestaurantSlug,
		VisitorID:      event.VisitorID,
		ItemCount:      event.ItemCount,
		Total:          int64(event.Total),
		Payload:        string(value),
		CreatedAt:      hc.now(),
	}
	if err := hc.ledger.Record(ctx, record); err != nil {
		// Relaying still matters more than the log entry
		logrus.WithField("event_id", event.ID).Warnf("Failed to record handoff: %v", err)
	}

	fields := logrus.Fields{
		"event_id": event.ID,
		"kind":     event.Kind,
		"slug":     event.RestaurantSlug,
	}

	if err := hc.notifier.Relay(ctx, event); err != nil {
		logrus.WithFields(fields).Warnf("Error relaying handoff: %v", err)
		if qErr := hc.queueFailure(ctx, event, value, err); qErr != nil {
			return fmt.Errorf("failed to queue handoff for retry: %w", qErr)
		}
		return nil
	}

	if err := hc.ledger.MarkRelayed(ctx, event.ID); err != nil {
		logrus.WithFields(fields).Warnf("Failed to mark handoff relayed: %v", err)
	}
	logrus.WithFields(fields).Info("Handoff relayed")
	return nil
}

func (hc *HandoffConsumer) queueFailure(ctx context.Context, event models.HandoffEvent, payload []byte, cause error) error {
	now := hc.now()
	next := now.Add(hc.baseDelay)
	return hc.ledger.QueueFailure(ctx, &models.FailedHandoff{
		ID:             uuid.New(),
		EventID:        event.ID,
		RestaurantSlug: event.RestaurantSlug,
		Payload:        string(payload),
		ErrorMessage:   cause.Error(),
		Status:         models.FailedStatusPending,
		NextRetryAt:    &next,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// Close closes the Kafka reader
func (hc *HandoffConsumer) Close() error {
	if err := hc.reader.Close(); err != nil {
		return fmt.Errorf("failed to close handoff reader: %w", err)
	}
	return nil
}
