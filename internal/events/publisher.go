package events

import (
	"bytes"
	"context"
	"encoding/json"
)

// CompletionPublisher serializes processing-complete events and hands them
// to the buffered producer.
type CompletionPublisher struct {
	producer *EventProducer
}

func NewCompletionPublisher(producer *EventProducer) *CompletionPublisher {
	return &CompletionPublisher{producer: producer}
}

func (p *CompletionPublisher) PublishProcessingComplete(ctx context.Context, ev ProcessingCompleteEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.producer.Write(ctx, ProcessingCompleteKind, bytes.NewBuffer(data))
}
