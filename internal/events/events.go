// Package events publishes workflow transitions for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

type Type string

const (
	TypeApplicationSubmitted   Type = "application.submitted"
	TypeApplicationResubmitted Type = "application.resubmitted"
	TypeMakerReviewed          Type = "application.maker_reviewed"
	TypeCheckerReviewed        Type = "application.checker_reviewed"
	TypeDocumentUploaded       Type = "document.uploaded"
)

// WorkflowEvent is the wire payload. ApplicationNumber is also the record key,
// so events for one application stay ordered.
type WorkflowEvent struct {
	Type              Type      `json:"type"`
	ApplicationNumber string    `json:"applicationNumber"`
	ActorID           string    `json:"actorId"`
	ActorRole         string    `json:"actorRole,omitempty"`
	Status            string    `json:"status,omitempty"`
	Action            string    `json:"action,omitempty"`
	DocumentType      string    `json:"documentType,omitempty"`
	RequestID         string    `json:"requestId,omitempty"`
	OccurredAt        time.Time `json:"occurredAt"`
}

// Producer is satisfied by kafka.Producer.
type Producer interface {
	Produce(ctx context.Context, key string, value []byte)
}

type Publisher struct {
	producer Producer
	logger   *slog.Logger
}

func NewPublisher(producer Producer, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: logger}
}

// Publish stamps the request id and time when unset and hands the event to
// the producer. It never fails the caller.
func (p *Publisher) Publish(ctx context.Context, event WorkflowEvent) {
	if p == nil || p.producer == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = requestcontext.Now(ctx)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "failed to encode workflow event", "type", string(event.Type), "error", err)
		}
		return
	}
	p.producer.Produce(ctx, event.ApplicationNumber, payload)
}
