package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ragchat/src/infrastructure/events"
)

func TestPublishRoundTrip(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	messages, err := pubsub.Subscribe(context.Background(), events.DefaultTopic)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	bus := events.NewBus(pubsub, "")
	bus.Publish("answer.committed", map[string]interface{}{"session": "s1"})

	select {
	case msg := <-messages:
		msg.Ack()
		var envelope events.Envelope
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if envelope.Event != "answer.committed" {
			t.Errorf("event = %q", envelope.Event)
		}
		if envelope.Fields["session"] != "s1" {
			t.Errorf("fields = %v", envelope.Fields)
		}
		if envelope.OccurredAt.IsZero() {
			t.Error("OccurredAt is zero")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestNilBusDropsEvents(t *testing.T) {
	var bus *events.Bus
	bus.Publish("query.received", nil)

	empty := events.NewBus(nil, "")
	empty.Publish("query.received", nil)
}
