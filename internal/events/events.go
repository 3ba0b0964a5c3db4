package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened to a flow.
type EventType string

// Flow lifecycle event types.
const (
	EventFlowStarted      EventType = "flow.started"
	EventFlowStepAdvanced EventType = "flow.step_advanced"
	EventFlowCompleted    EventType = "flow.completed"
	EventFlowFailed       EventType = "flow.failed"
)

// FlowEvent records one lifecycle change of a flow.
type FlowEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened
	Type EventType `json:"type"`

	// FlowID identifies the orchestrator instance that emitted the event
	FlowID uuid.UUID `json:"flow_id"`

	// Flow is the flow kind, e.g. "link"
	Flow string `json:"flow"`

	// Step is the step the flow is on after the event
	Step string `json:"step,omitempty"`

	// Payload contains event specific attributes serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *FlowEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewFlowEvent creates a FlowEvent. A nil payload leaves Payload empty.
func NewFlowEvent(
	eventType EventType,
	flowID uuid.UUID,
	flow, step string,
	payload interface{},
) (*FlowEvent, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = b
	}

	return &FlowEvent{
		ID:        uuid.New(),
		Type:      eventType,
		FlowID:    flowID,
		Flow:      flow,
		Step:      step,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *FlowEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows flows to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *FlowEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *FlowEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *FlowEvent) error {
	return f(ctx, event)
}
