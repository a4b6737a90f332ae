package events

import "time"

// Event is the contract for everything published on the in-process bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "PIPELINE_TRANSITION").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation embedded by concrete events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
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

// EventTypePipelineTransition marks one stage invocation completing and the
// record changing status.
const EventTypePipelineTransition = "PIPELINE_TRANSITION"

// NewPipelineTransition builds the event emitted after every stage
// invocation of a run.
func NewPipelineTransition(taskID, status string, iterationCount, messageCount int) Event {
	return BaseEvent{
		Type: EventTypePipelineTransition,
		Data: map[string]interface{}{
			"task_id":         taskID,
			"status":          status,
			"iteration_count": iterationCount,
			"message_count":   messageCount,
		},
		OccurredAt: time.Now().UTC(),
	}
}
