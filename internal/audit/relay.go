package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Producer is the Kafka-facing surface of the relay.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

const (
	relayBatchSize = 100
	relayInterval  = time.Second
)

// Relay moves outbox rows to Kafka. Rows are only marked published after
// the broker acknowledged them, so a crash between produce and mark yields
// at-least-once delivery, never loss.
type Relay struct {
	outbox   OutboxStore
	producer Producer
	topic    string
	logger   *slog.Logger
}

// NewRelay creates a relay worker.
func NewRelay(outbox OutboxStore, producer Producer, topic string, logger *slog.Logger) *Relay {
	return &Relay{
		outbox:   outbox,
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Run drains the outbox until the context is canceled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(relayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drainOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.ErrorContext(ctx, "audit relay pass failed", "error", err)
			}
		}
	}
}

func (r *Relay) drainOnce(ctx context.Context) error {
	for {
		events, err := r.outbox.ListUnpublished(ctx, relayBatchSize)
		if err != nil {
			return fmt.Errorf("list unpublished: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		published := make([]uuid.UUID, 0, len(events))
		for _, event := range events {
			payload, err := json.Marshal(event)
			if err != nil {
				// Unmarshalable rows would wedge the outbox forever;
				// drop them with a trace instead.
				r.logger.ErrorContext(ctx, "dropping unmarshalable audit event", "id", event.ID)
				published = append(published, event.ID)
				continue
			}
			if err := r.producer.Produce(ctx, r.topic, []byte(event.Action), payload); err != nil {
				// Stop the batch; unpublished rows are retried next tick.
				if markErr := r.outbox.MarkPublished(ctx, published); markErr != nil {
					return fmt.Errorf("mark published: %w", markErr)
				}
				return fmt.Errorf("produce: %w", err)
			}
			published = append(published, event.ID)
		}

		if err := r.outbox.MarkPublished(ctx, published); err != nil {
			return fmt.Errorf("mark published: %w", err)
		}
		if len(events) < relayBatchSize {
			return nil
		}
	}
}
