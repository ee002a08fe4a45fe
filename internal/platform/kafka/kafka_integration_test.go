//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/config"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/testutil/containers"
)

func TestProducerDeliversToTopic(t *testing.T) {
	broker := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.KafkaConfig{Brokers: broker.Brokers, Topic: "loanflow.test-events", Partitions: 1, ReplicationFactor: 1, BufferSize: 16}
	producer, err := NewProducer(ctx, cfg, nil)
	require.NoError(t, err)

	producer.Produce(ctx, "LA202600001", []byte(`{"type":"application.submitted"}`))
	require.NoError(t, producer.Close(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, "LA202600001", string(records[0].Key))
}

func TestEnsureTopicIsIdempotent(t *testing.T) {
	broker := containers.GetManager().GetRedpanda(t)
	client, err := kgo.NewClient(kgo.SeedBrokers(broker.Brokers...))
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, EnsureTopic(ctx, client, "loanflow.ensure", 1, 1))
	require.NoError(t, EnsureTopic(ctx, client, "loanflow.ensure", 1, 1))
}
