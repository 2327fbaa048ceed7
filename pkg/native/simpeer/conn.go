package simpeer

import (
	"fmt"

	"github.com/simbridge/simbridge-go/pkg/native"
)

// Conn is one session with the peer.
type Conn struct {
	peer     *Peer
	identity string
	handler  native.Handler

	// Guarded by peer.mu.
	closed   bool
	broken   error
	queue    []func(native.Handler)
	fields   map[native.FieldID]native.FieldDecl
	events   map[native.EventID]string
	eventIDs map[string]native.EventID
	groups   map[native.GroupID]map[native.EventID]struct{}
}

func newConn(p *Peer, identity string, h native.Handler) *Conn {
	return &Conn{
		peer:     p,
		identity: identity,
		handler:  h,
		fields:   make(map[native.FieldID]native.FieldDecl),
		events:   make(map[native.EventID]string),
		eventIDs: make(map[string]native.EventID),
		groups:   make(map[native.GroupID]map[native.EventID]struct{}),
	}
}

// Identity returns the client name given to Open.
func (c *Conn) Identity() string {
	return c.identity
}

// Declared reports whether field was declared on this connection.
func (c *Conn) Declared(field native.FieldID) bool {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	_, ok := c.fields[field]
	return ok
}

// GroupEvents returns the number of events in a notification group.
func (c *Conn) GroupEvents(group native.GroupID) int {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	return len(c.groups[group])
}

// Pending returns the number of queued inbound messages.
func (c *Conn) Pending() int {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	return len(c.queue)
}

func (c *Conn) DeclareField(decl native.FieldDecl) error {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	if c.closed {
		return native.ErrClosed
	}
	c.fields[decl.ID] = decl
	c.peer.counters.Declares++
	return nil
}

func (c *Conn) BindWriteEvent(event native.EventID, name string) error {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	if c.closed {
		return native.ErrClosed
	}
	c.events[event] = name
	c.eventIDs[name] = event
	c.peer.counters.Binds++
	return nil
}

func (c *Conn) AddEventToGroup(group native.GroupID, event native.EventID) error {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	if c.closed {
		return native.ErrClosed
	}
	if _, ok := c.events[event]; !ok {
		return fmt.Errorf("%w: %d", native.ErrUnknownEvent, event)
	}
	if c.groups[group] == nil {
		c.groups[group] = make(map[native.EventID]struct{})
	}
	c.groups[group][event] = struct{}{}
	c.peer.counters.GroupAdds++
	return nil
}

func (c *Conn) RequestValue(req native.RequestID, field native.FieldID) error {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	if c.closed {
		return native.ErrClosed
	}
	decl, ok := c.fields[field]
	if !ok {
		return fmt.Errorf("%w: %d", native.ErrUnknownField, field)
	}
	payload, err := c.peer.encodeLocked(decl)
	if err != nil {
		return err
	}
	c.peer.counters.Requests++
	c.peer.requests[field]++
	c.queue = append(c.queue, func(h native.Handler) { h.HandleValue(field, payload) })
	return nil
}

func (c *Conn) WriteValue(field native.FieldID, payload []byte) error {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	if c.closed {
		return native.ErrClosed
	}
	decl, ok := c.fields[field]
	if !ok {
		return fmt.Errorf("%w: %d", native.ErrUnknownField, field)
	}
	c.peer.counters.Writes++
	return c.peer.decodeLocked(decl, payload)
}

func (c *Conn) ClearGroup(group native.GroupID) error {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	if c.closed {
		return native.ErrClosed
	}
	delete(c.groups, group)
	c.peer.counters.Clears++
	return nil
}

// Drain delivers queued messages in order. Messages queued by the handler
// while draining are delivered on the next call.
func (c *Conn) Drain() error {
	c.peer.mu.Lock()
	if c.closed {
		c.peer.mu.Unlock()
		return native.ErrClosed
	}
	if err := c.broken; err != nil {
		c.peer.mu.Unlock()
		return err
	}
	queue := c.queue
	c.queue = nil
	c.peer.mu.Unlock()

	for _, msg := range queue {
		if c.isClosed() {
			return nil
		}
		msg(c.handler)
	}
	return nil
}

func (c *Conn) isClosed() bool {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	return c.closed
}

// Close ends the session. Safe to call more than once.
func (c *Conn) Close() error {
	c.peer.mu.Lock()
	defer c.peer.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.queue = nil
	c.peer.counters.Closes++
	if c.peer.conn == c {
		c.peer.conn = nil
	}
	return nil
}

var _ native.Conn = (*Conn)(nil)
