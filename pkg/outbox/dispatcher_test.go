package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
)

type captureProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *captureProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func TestDispatchKeysByAggregateID(t *testing.T) {
	prod := &captureProducer{}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), prod, "order.events")

	ev := Event{
		ID:          7,
		AggregateID: "order-123",
		Type:        "OrderPlaced",
		Payload:     []byte(`{"order_id":"order-123"}`),
		Traceparent: "00-abc-def-01",
	}
	if err := d.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(prod.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(prod.msgs))
	}
	msg := prod.msgs[0]
	if string(msg.Key) != "order-123" || msg.Topic != "order.events" {
		t.Fatalf("key=%q topic=%q", msg.Key, msg.Topic)
	}

	var typeHeader, traceHeader string
	for _, h := range msg.Headers {
		switch h.Key {
		case "event_type":
			typeHeader = string(h.Value)
		case "traceparent":
			traceHeader = string(h.Value)
		}
	}
	if typeHeader != "OrderPlaced" || traceHeader != "00-abc-def-01" {
		t.Fatalf("headers: type=%q traceparent=%q", typeHeader, traceHeader)
	}
}

func TestDispatchPropagatesProducerError(t *testing.T) {
	prod := &captureProducer{err: errors.New("broker down")}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), prod, "order.events")

	if err := d.Dispatch(context.Background(), Event{ID: 1}); err == nil {
		t.Fatalf("expected error from producer")
	}
}
