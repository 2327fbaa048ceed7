package group

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/simbridge/simbridge-go/pkg/connection"
	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/property"
	"github.com/simbridge/simbridge-go/pkg/subscription"
)

// Group errors.
var (
	ErrUnknownField = errors.New("field not in group")
	ErrUnknownEvent = errors.New("event not in group")
	ErrUnknownKey   = errors.New("no property with that key")
)

// Host is the bridge surface a group needs.
type Host interface {
	property.Writer
	Subscribe(p property.Property) (subscription.Handle, error)
	Unsubscribe(h subscription.Handle) error
	UnsubscribeGroup(id native.GroupID) error
	Declare(p property.Property) error
}

// Base implements bridge.Group over a fixed catalog of cells.
type Base struct {
	id     native.GroupID
	name   string
	host   Host
	logger *slog.Logger

	props   []property.Property
	byField map[native.FieldID]property.Property
	byEvent map[native.EventID]property.Property
	byKey   map[string]property.Property

	mu        sync.Mutex
	observers int

	// opMu serializes subscribe and release runs against the host.
	opMu    sync.Mutex
	handles []subscription.Handle
}

// NewBase creates a group. Cells are kept in the given order.
func NewBase(id native.GroupID, name string, host Host, logger *slog.Logger, props ...property.Property) *Base {
	b := &Base{
		id:      id,
		name:    name,
		host:    host,
		logger:  logger,
		props:   props,
		byField: make(map[native.FieldID]property.Property, len(props)),
		byEvent: make(map[native.EventID]property.Property),
		byKey:   make(map[string]property.Property, len(props)),
	}
	for _, p := range props {
		d := p.Descriptor()
		b.byField[d.Field] = p
		b.byKey[d.Key] = p
		if d.EventBound() {
			b.byEvent[d.Event.ID] = p
		}
	}
	return b
}

// ID returns the notification group id.
func (b *Base) ID() native.GroupID { return b.id }

// Name returns the group name.
func (b *Base) Name() string { return b.name }

// Properties returns the cells in catalog order.
func (b *Base) Properties() []property.Property {
	out := make([]property.Property, len(b.props))
	copy(out, b.props)
	return out
}

// Property returns the cell with the given key.
func (b *Base) Property(key string) (property.Property, error) {
	p, ok := b.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownKey, b.name, key)
	}
	return p, nil
}

// Observers returns the number of live observers.
func (b *Base) Observers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.observers
}

// Subscribe registers fn for changes of every cell in the group. The
// returned cancel func is idempotent.
func (b *Base) Subscribe(fn func(property.Change)) (cancel func()) {
	cancels := make([]func(), 0, len(b.props))
	for _, p := range b.props {
		cancels = append(cancels, p.OnChange(fn))
	}

	b.mu.Lock()
	b.observers++
	first := b.observers == 1
	b.mu.Unlock()

	if first {
		b.activate()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, c := range cancels {
				c()
			}

			b.mu.Lock()
			b.observers--
			last := b.observers == 0
			b.mu.Unlock()

			if last {
				b.release()
			}
		})
	}
}

// activate subscribes every cell if the group has observers. Without a
// session it does nothing; the next SessionOpened subscribes instead.
func (b *Base) activate() {
	b.opMu.Lock()
	defer b.opMu.Unlock()

	if b.Observers() == 0 || len(b.handles) > 0 {
		return
	}
	for _, p := range b.props {
		h, err := b.host.Subscribe(p)
		if err != nil {
			if errors.Is(err, connection.ErrNotConnected) {
				b.debugLog("subscribe deferred until session opens")
				b.releaseLocked()
				return
			}
			b.warnLog("subscribe failed", "key", p.Descriptor().Key, "error", err)
			continue
		}
		b.handles = append(b.handles, h)
	}
}

// release drops every handle once the last observer is gone. An observer
// that arrived since keeps them.
func (b *Base) release() {
	b.opMu.Lock()
	defer b.opMu.Unlock()

	if b.Observers() > 0 {
		return
	}
	b.releaseLocked()
	if err := b.host.UnsubscribeGroup(b.id); err != nil && !errors.Is(err, connection.ErrNotConnected) {
		b.warnLog("clear group failed", "error", err)
	}
}

func (b *Base) releaseLocked() {
	for _, h := range b.handles {
		if err := b.host.Unsubscribe(h); err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
			b.warnLog("unsubscribe failed", "field", h.Field, "error", err)
		}
	}
	b.handles = nil
}

// SessionOpened declares every field and subscribes again if the group has
// observers.
func (b *Base) SessionOpened() {
	for _, p := range b.props {
		if err := b.host.Declare(p); err != nil {
			b.warnLog("declare failed", "key", p.Descriptor().Key, "error", err)
		}
	}
	b.activate()
}

// SessionClosed forgets the session's handles and restores every default.
func (b *Base) SessionClosed() {
	b.opMu.Lock()
	b.handles = nil
	b.opMu.Unlock()

	b.ResetValues()
}

// ResetValues restores every cell's default.
func (b *Base) ResetValues() {
	for _, p := range b.props {
		p.Reset()
	}
}

// ReceiveValue decodes a value reply into the owning cell.
func (b *Base) ReceiveValue(field native.FieldID, payload []byte) error {
	p, ok := b.byField[field]
	if !ok {
		return fmt.Errorf("%w: %s field %d", ErrUnknownField, b.name, field)
	}
	if _, err := p.Decode(payload); err != nil {
		return fmt.Errorf("%s.%s: %w", b.name, p.Descriptor().Key, err)
	}
	return nil
}

// ReceiveEvent re-requests the value of the cell bound to event.
func (b *Base) ReceiveEvent(event native.EventID, data uint32) error {
	p, ok := b.byEvent[event]
	if !ok {
		return fmt.Errorf("%w: %s event %d", ErrUnknownEvent, b.name, event)
	}
	b.debugLog("event", "key", p.Descriptor().Key, "data", data)
	return b.host.RequestValue(p.Descriptor())
}

func (b *Base) debugLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, append([]any{"group", b.name}, args...)...)
	}
}

func (b *Base) warnLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, append([]any{"group", b.name}, args...)...)
	}
}
