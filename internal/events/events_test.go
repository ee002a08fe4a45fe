package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

type recordingProducer struct {
	keys   []string
	values [][]byte
}

func (r *recordingProducer) Produce(_ context.Context, key string, value []byte) {
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
}

func TestPublishStampsRequestMetadata(t *testing.T) {
	producer := &recordingProducer{}
	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), at), "req-7")

	NewPublisher(producer, nil).Publish(ctx, WorkflowEvent{
		Type:              TypeMakerReviewed,
		ApplicationNumber: "LA202600003",
		Action:            "APPROVE",
		Status:            "WITH_CHECKER",
	})

	require.Len(t, producer.keys, 1)
	assert.Equal(t, "LA202600003", producer.keys[0])

	var got WorkflowEvent
	require.NoError(t, json.Unmarshal(producer.values[0], &got))
	assert.Equal(t, TypeMakerReviewed, got.Type)
	assert.Equal(t, "req-7", got.RequestID)
	assert.True(t, at.Equal(got.OccurredAt))
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), WorkflowEvent{Type: TypeDocumentUploaded})
	})
	assert.NotPanics(t, func() {
		NewPublisher(nil, nil).Publish(context.Background(), WorkflowEvent{Type: TypeDocumentUploaded})
	})
}
