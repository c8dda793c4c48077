package persisted

import (
	"context"
	"time"
)

// EventType names a store event.
type EventType string

const (
	EventSaved     EventType = "operation.saved"
	EventDuplicate EventType = "operation.duplicate"
	EventDeleted   EventType = "operation.deleted"
	EventFailed    EventType = "operation.failed"
)

// Event is emitted on the store bus after every write attempt.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix milliseconds.
	Operation string    `json:"operation"` // save or delete.
	Hash      string    `json:"hash,omitempty"`
	Record    *Record   `json:"record,omitempty"`
	Error     *string   `json:"error,omitempty"`
	Duration  *int64    `json:"duration,omitempty"` // Milliseconds.
}

// EventCallback receives store events.
type EventCallback func(ctx context.Context, event Event) error

// SubscriptionInfo describes a registered callback.
type SubscriptionInfo struct {
	ID          string    `json:"id"`
	Event       EventType `json:"event"`
	Label       *string   `json:"label,omitempty"`
	Unsubscribe func()    `json:"-"`
}

func createEvent(eventType EventType, operation, hash string, record *Record, err error, startTime time.Time) Event {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	var errStr *string
	if err != nil {
		s := err.Error()
		errStr = &s
	}

	return Event{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Operation: operation,
		Hash:      hash,
		Record:    record,
		Error:     errStr,
		Duration:  duration,
	}
}
