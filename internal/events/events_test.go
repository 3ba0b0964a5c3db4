package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlowEvent(t *testing.T) {
	type testPayload struct {
		Outcome string `json:"outcome"`
	}

	flowID := uuid.New()
	event, err := NewFlowEvent(EventFlowCompleted, flowID, "link", "completed", testPayload{Outcome: "linked"})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EventFlowCompleted, event.Type)
	assert.Equal(t, flowID, event.FlowID)
	assert.Equal(t, "link", event.Flow)
	assert.Equal(t, "completed", event.Step)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded testPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "linked", decoded.Outcome)
}

func TestNewFlowEvent_NilPayload(t *testing.T) {
	event, err := NewFlowEvent(EventFlowStarted, uuid.New(), "pay", "", nil)

	require.NoError(t, err)
	assert.Empty(t, event.Payload)
}

func TestNewFlowEvent_UnencodablePayload(t *testing.T) {
	_, err := NewFlowEvent(EventFlowStarted, uuid.New(), "pay", "", make(chan int))

	assert.Error(t, err)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	mu sync.Mutex
	// The last event received by this handler
	LastEvent *FlowEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *FlowEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandlerFunc(t *testing.T) {
	var got *FlowEvent
	handler := EventHandlerFunc(func(ctx context.Context, event *FlowEvent) error {
		got = event
		return nil
	})

	event, err := NewFlowEvent(EventFlowFailed, uuid.New(), "unlink", "collect-otp-data", nil)
	require.NoError(t, err)

	assert.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)

	expectedErr := errors.New("handler error")
	failing := EventHandlerFunc(func(context.Context, *FlowEvent) error { return expectedErr })
	assert.Equal(t, expectedErr, failing.HandleEvent(context.Background(), event))
}
