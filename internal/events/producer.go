package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeTagPackInserted   = "tagpack.inserted"
	TypeActorPackInserted = "actorpack.inserted"
)

// PackEvent announces that a pack was loaded into the store
type PackEvent struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	URI      string    `json:"uri"`
	TagCount int       `json:"tag_count"`
	At       time.Time `json:"at"`
}

// NewPackEvent creates an event with a fresh id
func NewPackEvent(eventType, uri string, count int) PackEvent {
	return PackEvent{
		ID:       uuid.NewString(),
		Type:     eventType,
		URI:      uri,
		TagCount: count,
		At:       time.Now().UTC(),
	}
}

// Producer publishes pack events, one lazily created writer per topic
type Producer struct {
	writers  map[string]*kafka.Writer
	mu       sync.Mutex
	brokers  []string
	clientID string
	logger   *zap.Logger
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, clientID string, logger *zap.Logger) *Producer {
	return &Producer{
		writers:  make(map[string]*kafka.Writer),
		brokers:  brokers,
		clientID: clientID,
		logger:   logger,
	}
}

// getWriter returns the writer of topic, creating it on first use
func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	// Hash on the pack uri keeps the events of one pack in partition order
	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Transport: &kafka.Transport{
			ClientID: p.clientID,
		},
	}

	p.writers[topic] = writer
	return writer
}

// PublishPackEvent writes ev to topic keyed by the pack uri
func (p *Producer) PublishPackEvent(ctx context.Context, topic string, ev PackEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	err = p.getWriter(topic).WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.URI),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
		Time: ev.At,
	})
	if err != nil {
		p.logger.Error("Failed to publish pack event",
			zap.String("topic", topic),
			zap.String("event_id", ev.ID),
			zap.String("uri", ev.URI),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Pack event published",
		zap.String("topic", topic),
		zap.String("event_id", ev.ID),
		zap.String("type", ev.Type))

	return nil
}

// Close flushes and closes every writer
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer for %s: %w", topic, err))
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return errors.Join(errs...)
}
