package events

import (
	"context"
	"time"
)

const (
	SessionStarted   = "SESSION_STARTED"
	SessionCleared   = "SESSION_CLEARED"
	DatasetActivated = "DATASET_ACTIVATED"
	EquipmentLoaded  = "EQUIPMENT_LOADED"
	HistoryRefreshed = "HISTORY_REFRESHED"
	StateReset       = "STATE_RESET"
	OperationFailed  = "OPERATION_FAILED"
)

// Event defines the contract for all client state-change events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func NewEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is what state owners depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
