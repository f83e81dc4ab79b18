//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"easyplit/internal/platform/config"
	"easyplit/internal/platform/kafka"
	"easyplit/pkg/testutil/containers"
)

// TestRelayDeliversToBroker pushes outbox rows through a real broker and
// reads them back.
func TestRelayDeliversToBroker(t *testing.T) {
	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	const topic = "easyplit.audit.integration"
	producer, err := kafka.NewProducer(ctx, config.KafkaConfig{
		Brokers:    []string{redpanda.Broker},
		AuditTopic: topic,
	})
	require.NoError(t, err)
	defer producer.Close()

	store := NewInMemoryStore()
	pub := NewPublisher(store)
	userID := uuid.New()
	require.NoError(t, pub.Emit(ctx, Event{Action: ActionLoginSucceeded, UserID: userID}))

	relay := NewRelay(store, producer, topic, testLogger())
	require.NoError(t, relay.drainOnce(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, string(ActionLoginSucceeded), string(records[0].Key))

	var event Event
	require.NoError(t, json.Unmarshal(records[0].Value, &event))
	assert.Equal(t, userID, event.UserID)

	// Nothing left behind for a second pass.
	unpublished, err := store.ListUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, unpublished)
}
