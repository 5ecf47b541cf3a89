package events

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"ragchat/src/infrastructure/log"
)

// DefaultTopic carries all session events.
const DefaultTopic = "chat.events"

// Envelope is the wire form of one session event.
type Envelope struct {
	Event      string                 `json:"event"`
	OccurredAt time.Time              `json:"occurred_at"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Bus publishes session events on a watermill publisher. It is the optional
// side channel next to the answer stream: subscribers see retrieval results,
// commits and failures, never answer increments. A nil Bus drops everything.
type Bus struct {
	publisher message.Publisher
	topic     string
}

func NewBus(publisher message.Publisher, topic string) *Bus {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Bus{
		publisher: publisher,
		topic:     topic,
	}
}

// Publish sends one event. Failures are logged and swallowed: the event
// stream must never break the query loop.
func (b *Bus) Publish(event string, fields map[string]interface{}) {
	if b == nil || b.publisher == nil {
		return
	}

	payload, err := json.Marshal(Envelope{
		Event:      event,
		OccurredAt: time.Now().UTC(),
		Fields:     fields,
	})
	if err != nil {
		log.Error(err, "failed to marshal event", "event", event)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.publisher.Publish(b.topic, msg); err != nil {
		log.Error(err, "failed to publish event", "event", event)
	}
}
