package simpeer

import (
	"context"
	"fmt"
	"sync"

	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/wire"
)

// DefaultName is the application name reported in the open handshake.
const DefaultName = "Simulator"

// Counters records what the bridge asked of the peer.
type Counters struct {
	Opens     int
	Declares  int
	Binds     int
	GroupAdds int
	Requests  int
	Writes    int
	Clears    int
	Closes    int
}

// Effect mutates the peer's values when a client event fires.
type Effect func(p *Peer)

// Peer is a scripted simulator.
type Peer struct {
	mu sync.Mutex

	name     string
	running  bool
	refuse   error
	values   map[string]any
	effects  map[string]Effect
	conn     *Conn
	counters Counters

	requests map[native.FieldID]int
}

// New creates a running peer with the standard event effects.
func New(name string) *Peer {
	if name == "" {
		name = DefaultName
	}
	p := &Peer{
		name:     name,
		running:  true,
		values:   make(map[string]any),
		effects:  make(map[string]Effect),
		requests: make(map[native.FieldID]int),
	}
	p.effects["TOGGLE_MASTER_BATTERY"] = func(p *Peer) {
		on, _ := p.values["ELECTRICAL MASTER BATTERY"].(bool)
		p.values["ELECTRICAL MASTER BATTERY"] = !on
	}
	return p
}

// PeerRunning implements native.PeerProbe.
func (p *Peer) PeerRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// SetRunning sets whether the peer process appears to be running.
func (p *Peer) SetRunning(running bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = running
}

// Refuse makes later opens fail with err; nil accepts them again.
func (p *Peer) Refuse(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refuse = err
}

// Set stores a value by native name. Accepted types are float64, bool,
// int64 and string.
func (p *Peer) Set(name string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[name] = v
}

// Get returns a value by native name.
func (p *Peer) Get(name string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[name]
	return v, ok
}

// OnEvent sets the effect of a client event.
func (p *Peer) OnEvent(name string, fn Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effects[name] = fn
}

// Counters returns a snapshot of the call counters.
func (p *Peer) Counters() Counters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counters
}

// Requests returns the number of value requests for field.
func (p *Peer) Requests(field native.FieldID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[field]
}

// ResetCounters zeroes every counter.
func (p *Peer) ResetCounters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counters = Counters{}
	clear(p.requests)
}

// Conn returns the active connection, or nil.
func (p *Peer) Conn() *Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn
}

// Open implements native.Transport. The handshake is queued and delivered
// on the first Drain.
func (p *Peer) Open(ctx context.Context, identity string, h native.Handler) (native.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil, native.ErrPeerNotRunning
	}
	if p.refuse != nil {
		return nil, p.refuse
	}
	if p.conn != nil {
		return nil, fmt.Errorf("simpeer: client %q already connected", p.conn.identity)
	}

	c := newConn(p, identity, h)
	c.queue = append(c.queue, func(h native.Handler) { h.HandleOpen(p.name) })
	p.conn = c
	p.counters.Opens++
	return c, nil
}

// Quit queues a quit message on the active connection.
func (p *Peer) Quit() {
	p.enqueue(func(h native.Handler) { h.HandleQuit() })
}

// Fail queues a native exception on the active connection.
func (p *Peer) Fail(code uint32) {
	p.enqueue(func(h native.Handler) { h.HandleError(code) })
}

// Break makes the next Drain of the active connection fail with err.
func (p *Peer) Break(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.broken = err
	}
}

// Toggle fires a client event as if raised inside the simulator: the
// effect runs and every group holding the event is notified.
func (p *Peer) Toggle(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fireLocked(event, 0)
}

func (p *Peer) fireLocked(event string, data uint32) {
	if fn, ok := p.effects[event]; ok {
		fn(p)
	}
	c := p.conn
	if c == nil {
		return
	}
	id, ok := c.eventIDs[event]
	if !ok {
		return
	}
	for group, events := range c.groups {
		if _, ok := events[id]; ok {
			c.queue = append(c.queue, func(h native.Handler) { h.HandleEvent(group, id, data) })
		}
	}
}

func (p *Peer) enqueue(msg func(native.Handler)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.queue = append(p.conn.queue, msg)
	}
}

func (p *Peer) encodeLocked(decl native.FieldDecl) ([]byte, error) {
	v := p.values[decl.Name]
	switch decl.Type {
	case native.DataTypeFloat64:
		f, _ := v.(float64)
		return wire.EncodeFloat64(f), nil
	case native.DataTypeInt32:
		switch x := v.(type) {
		case bool:
			return wire.EncodeBool(x), nil
		case int64:
			return wire.EncodeInt32(int32(x)), nil
		default:
			return wire.EncodeInt32(0), nil
		}
	case native.DataTypeInt64:
		n, _ := v.(int64)
		return wire.EncodeInt64(n), nil
	case native.DataTypeString256:
		s, _ := v.(string)
		return wire.EncodeString256(s)
	default:
		return nil, wire.ErrInvalidDataType
	}
}

func (p *Peer) decodeLocked(decl native.FieldDecl, payload []byte) error {
	var (
		v   any
		err error
	)
	switch decl.Type {
	case native.DataTypeFloat64:
		v, err = wire.DecodeFloat64(payload)
	case native.DataTypeInt32:
		if _, isInt := p.values[decl.Name].(int64); isInt {
			var n int32
			n, err = wire.DecodeInt32(payload)
			v = int64(n)
		} else {
			v, err = wire.DecodeBool(payload)
		}
	case native.DataTypeInt64:
		v, err = wire.DecodeInt64(payload)
	case native.DataTypeString256:
		v, err = wire.DecodeString256(payload)
	default:
		err = wire.ErrInvalidDataType
	}
	if err != nil {
		return err
	}
	p.values[decl.Name] = v
	return nil
}

var (
	_ native.Transport = (*Peer)(nil)
	_ native.PeerProbe = (*Peer)(nil)
)
