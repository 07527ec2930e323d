package events

import (
	"context"
	"encoding/json"
	"fmt"

	"chemviz-client/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const topicPrefix = "chemviz."

// Bus is an in-process event bus on top of a watermill GoChannel.
// Events published while nobody is subscribed to their type are dropped.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewBus(log logger.ILogger) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NopLogger{},
		),
		logger: log,
	}
}

func topic(eventType string) string {
	return topicPrefix + eventType
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(BaseEvent{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubSub.Publish(topic(event.EventType()), msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventType(), err)
	}
	return nil
}

// Subscribe streams events of one type until ctx is done.
func (b *Bus) Subscribe(ctx context.Context, eventType string) (<-chan Event, error) {
	messages, err := b.pubSub.Subscribe(ctx, topic(eventType))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", eventType, err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range messages {
			var evt BaseEvent
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				b.logger.Warn("EVENTS", "Dropping undecodable event", map[string]interface{}{"error": err.Error(), "topic": eventType})
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
