//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"
)

// RedpandaContainer wraps a testcontainers Redpanda broker, the Kafka stand-in
// used by relay integration tests.
type RedpandaContainer struct {
	Container testcontainers.Container
	Broker    string
	Client    *kgo.Client
}

// NewRedpandaContainer starts a Redpanda container and connects a client.
func NewRedpandaContainer(t *testing.T) *RedpandaContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcredpanda.Run(ctx, "redpandadata/redpanda:v24.1.2")
	if err != nil {
		t.Fatalf("failed to start redpanda container: %v", err)
	}

	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get redpanda broker address: %v", err)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to redpanda: %v", err)
	}

	return &RedpandaContainer{
		Container: container,
		Broker:    broker,
		Client:    client,
	}
}
