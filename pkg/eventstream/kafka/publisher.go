// Package kafka publishes profile events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/eventstream"
)

// Config holds Kafka connection options.
type Config struct {
	// Brokers is the bootstrap broker list. Required.
	Brokers []string

	// Topic receives profile events. Required.
	Topic string
}

// Publisher writes profile events to Kafka as JSON, keyed by profile ID
// so all events for one profile land on the same partition in order.
type Publisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewPublisher creates a Kafka-backed publisher. The connection is lazy;
// broker problems surface on the first publish.
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafkago.Hash{},
	}

	return &Publisher{writer: writer, logger: logger}, nil
}

func (p *Publisher) PublishProfile(ctx context.Context, event *eventstream.ProfileNormalizedEvent) error {
	if event == nil {
		return eventstream.ErrNilProfileEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding profile event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.ProfileID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publishing profile event: %w", err)
	}

	p.logger.Debug("profile event published",
		zap.String("event_id", event.EventID),
		zap.String("profile_id", event.ProfileID),
	)

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
