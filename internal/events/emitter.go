package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// subscription is a handler and the event types it wants. An empty type set
// means every event.
type subscription struct {
	handler EventHandler
	types   map[EventType]struct{}
}

func (s subscription) wants(t EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// InMemoryEventEmitter dispatches flow events synchronously to the handlers
// registered on it, in registration order.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "flow_events")),
	}
}

// RegisterHandler subscribes handler to the given event types, or to all
// events when none are given.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, types ...EventType) {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	e.mu.Lock()
	e.subs = append(e.subs, sub)
	count := len(e.subs)
	e.mu.Unlock()

	e.logger.Debug("flow event handler registered",
		slog.Int("handler_count", count),
		slog.Int("event_types", len(types)))
}

// EmitEvent hands event to every matching handler. A failing handler does not
// stop delivery to the rest; all handler errors are returned joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *FlowEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	e.mu.RLock()
	subs := append([]subscription(nil), e.subs...)
	e.mu.RUnlock()

	var errs []error
	delivered := 0
	for _, sub := range subs {
		if !sub.wants(event.Type) {
			continue
		}
		delivered++
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			e.logger.WarnContext(ctx, "flow event handler failed",
				slog.String("event_type", string(event.Type)),
				slog.String("flow", event.Flow),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	e.logger.DebugContext(ctx, "flow event emitted",
		slog.String("event_type", string(event.Type)),
		slog.String("flow_id", event.FlowID.String()),
		slog.Int("delivered", delivered))
	return errors.Join(errs...)
}
