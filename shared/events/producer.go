// Package events publishes handoff events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/models"
)

// ErrQueueFull is returned when the producer cannot accept more events
var ErrQueueFull = errors.New("handoff event queue full, event dropped")

// Publisher accepts handoff events for asynchronous delivery
type Publisher interface {
	Publish(event models.HandoffEvent) error
	Close() error
}

// messageWriter is the part of kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues handoff events and writes them from a worker pool
type Producer struct {
	writer       messageWriter
	topic        string
	events       chan models.HandoffEvent
	workerCount  int
	writeTimeout time.Duration
	shutdownChan chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
}

// NewProducer creates a producer for topic on broker and starts its workers
func NewProducer(broker, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
	return newProducer(writer, topic, 4, 1000)
}

func newProducer(writer messageWriter, topic string, workers, queue int) *Producer {
	p := &Producer{
		writer:       writer,
		topic:        topic,
		events:       make(chan models.HandoffEvent, queue),
		workerCount:  workers,
		writeTimeout: 5 * time.Second,
		shutdownChan: make(chan struct{}),
	}
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	logrus.Infof("[Kafka] Started %d handoff workers for topic %s", p.workerCount, topic)
	return p
}

func (p *Producer) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.events:
			p.write(id, event)
		case <-p.shutdownChan:
			// drain what is already queued
			for {
				select {
				case event := <-p.events:
					p.write(id, event)
				default:
					return
				}
			}
		}
	}
}

func (p *Producer) write(id int, event models.HandoffEvent) {
	if err := p.send(event); err != nil {
		logrus.WithFields(logrus.Fields{
			"worker":   id,
			"event_id": event.ID,
			"slug":     event.RestaurantSlug,
		}).WithError(err).Error("Failed to publish handoff event")
	}
}

// Publish queues an event without blocking
func (p *Producer) Publish(event models.HandoffEvent) error {
	select {
	case <-p.shutdownChan:
		return fmt.Errorf("producer closed")
	default:
	}
	select {
	case p.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Producer) send(event models.HandoffEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal handoff event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.RestaurantSlug),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Kind)},
			{Key: "restaurant_slug", Value: []byte(event.RestaurantSlug)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write handoff event to Kafka: %w", err)
	}
	return nil
}

// Close stops accepting events, flushes the queue and closes the writer
func (p *Producer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.shutdownChan)
		p.wg.Wait()
		if cerr := p.writer.Close(); cerr != nil {
			err = fmt.Errorf("failed to close Kafka writer: %w", cerr)
		}
		logrus.Info("[Kafka] Handoff producer stopped")
	})
	return err
}

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(event models.HandoffEvent) error {
	logrus.WithFields(logrus.Fields{
		"event_id": event.ID,
		"kind":     event.Kind,
		"slug":     event.RestaurantSlug,
		"items":    event.ItemCount,
	}).Info("Handoff event (no broker configured)")
	return nil
}

func (LogPublisher) Close() error {
	return nil
}
