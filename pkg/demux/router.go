package demux

import (
	"log/slog"
	"sync"

	"github.com/simbridge/simbridge-go/pkg/native"
)

// ValueSink receives value replies for a field.
type ValueSink interface {
	ReceiveValue(field native.FieldID, payload []byte) error
}

// EventSink receives event notifications for a notification group.
type EventSink interface {
	ReceiveEvent(event native.EventID, data uint32) error
}

// ValueSinkFunc adapts a function to ValueSink.
type ValueSinkFunc func(field native.FieldID, payload []byte) error

// ReceiveValue calls f.
func (f ValueSinkFunc) ReceiveValue(field native.FieldID, payload []byte) error {
	return f(field, payload)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(event native.EventID, data uint32) error

// ReceiveEvent calls f.
func (f EventSinkFunc) ReceiveEvent(event native.EventID, data uint32) error {
	return f(event, data)
}

// Router maps field ids and group ids to their owners.
type Router struct {
	mu     sync.RWMutex
	values map[native.FieldID]ValueSink
	events map[native.GroupID]EventSink

	logger *slog.Logger
}

// NewRouter creates an empty router. logger may be nil.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		values: make(map[native.FieldID]ValueSink),
		events: make(map[native.GroupID]EventSink),
		logger: logger,
	}
}

// SetValueRoute routes replies for field to sink, replacing any prior route.
func (r *Router) SetValueRoute(field native.FieldID, sink ValueSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[field] = sink
}

// RemoveValueRoute drops the route for field.
func (r *Router) RemoveValueRoute(field native.FieldID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, field)
}

// SetEventRoute routes notifications for group to sink.
func (r *Router) SetEventRoute(group native.GroupID, sink EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[group] = sink
}

// RemoveEventRoute drops the route for group.
func (r *Router) RemoveEventRoute(group native.GroupID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, group)
}

// HasValueRoute reports whether field currently has an owner.
func (r *Router) HasValueRoute(field native.FieldID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.values[field]
	return ok
}

// HasEventRoute reports whether group currently has an owner.
func (r *Router) HasEventRoute(group native.GroupID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.events[group]
	return ok
}

// Clear removes every route.
func (r *Router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.values)
	clear(r.events)
}

// RouteValue forwards a value reply to its owner. It returns false if the
// field had no route and the reply was dropped.
func (r *Router) RouteValue(field native.FieldID, payload []byte) bool {
	r.mu.RLock()
	sink, ok := r.values[field]
	r.mu.RUnlock()

	if !ok {
		r.debugLog("dropping value for unrouted field", "field", field)
		return false
	}
	if err := sink.ReceiveValue(field, payload); err != nil {
		r.warnLog("value owner rejected reply", "field", field, "error", err)
	}
	return true
}

// RouteEvent forwards an event notification to the owner of group. It
// returns false if the group had no route.
func (r *Router) RouteEvent(group native.GroupID, event native.EventID, data uint32) bool {
	r.mu.RLock()
	sink, ok := r.events[group]
	r.mu.RUnlock()

	if !ok {
		r.debugLog("dropping event for unrouted group", "group", group, "event", event)
		return false
	}
	if err := sink.ReceiveEvent(event, data); err != nil {
		r.warnLog("event owner rejected notification", "group", group, "event", event, "error", err)
	}
	return true
}

func (r *Router) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, append([]any{"component", "demux"}, args...)...)
	}
}

func (r *Router) warnLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, append([]any{"component", "demux"}, args...)...)
	}
}
