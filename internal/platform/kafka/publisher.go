// Package kafka implements the domain event sink on top of a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"banklink/internal/events"
	"banklink/internal/platform/config"
)

// Publisher publishes domain events to a single Kafka topic, keyed by the
// event's correlation id so all events for one onboarding case or bank
// transaction land in the same partition.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects to the configured brokers. Returns nil if no brokers
// are configured (Kafka sink disabled).
func NewPublisher(cfg config.Kafka) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Publisher{client: client, topic: cfg.Topic}, nil
}

// Publish produces the event synchronously. The orchestrators call this after
// the record is persisted, so a produce failure surfaces to the caller as a
// generic failure without undoing the write.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := event.ReferenceID
	if key == "" {
		key = event.TraceNo
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes and shuts down the underlying client.
func (p *Publisher) Close() {
	if p != nil && p.client != nil {
		p.client.Close()
	}
}
