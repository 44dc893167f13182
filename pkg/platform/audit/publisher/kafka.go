// Package publisher drains the audit outbox into Kafka. The outbox table
// decouples payment correctness from broker availability: a Kafka outage
// only delays publication, it never loses or blocks events.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"crosspay/pkg/platform/audit/store/postgres"
)

const defaultBatchSize = 100

// Outbox is the slice of the postgres store the publisher needs.
type Outbox interface {
	PendingOutbox(ctx context.Context, limit int) ([]postgres.OutboxRow, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Kafka publishes outbox rows to a topic.
type Kafka struct {
	client *kgo.Client
	outbox Outbox
	topic  string
	logger *slog.Logger

	interval  time.Duration
	batchSize int
}

// Option configures the publisher.
type Option func(*Kafka)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Kafka) { k.logger = logger }
}

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(k *Kafka) { k.interval = d }
}

// NewKafka connects to the brokers and ensures the topic exists.
func NewKafka(brokers []string, topic string, outbox Outbox, opts ...Option) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(client, topic); err != nil {
		client.Close()
		return nil, err
	}

	k := &Kafka{
		client:    client,
		outbox:    outbox,
		topic:     topic,
		interval:  time.Second,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

func ensureTopic(client *kgo.Client, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin := kadm.NewClient(client)
	topics, err := admin.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list kafka topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	if _, err := admin.CreateTopic(ctx, 3, 1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

// Run polls the outbox until ctx is cancelled.
func (k *Kafka) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := k.publishBatch(ctx); err != nil && k.logger != nil {
				k.logger.Error("outbox publish failed, will retry", "error", err)
			}
		}
	}
}

func (k *Kafka) publishBatch(ctx context.Context) error {
	rows, err := k.outbox.PendingOutbox(ctx, k.batchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]*kgo.Record, len(rows))
	for i, row := range rows {
		records[i] = &kgo.Record{
			Topic: k.topic,
			Key:   []byte(row.ID.String()),
			Value: row.Payload,
		}
	}

	if err := k.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit batch: %w", err)
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return k.outbox.MarkPublished(ctx, ids)
}

// Close flushes and closes the Kafka client.
func (k *Kafka) Close() {
	k.client.Close()
}
