// Package feed streams property changes to WebSocket clients as JSON.
//
// Every client gets a snapshot of all cached values on connect and then one
// message per change. Session state transitions are forwarded as well.
package feed

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/simbridge/simbridge-go/pkg/connection"
	"github.com/simbridge/simbridge-go/pkg/property"
)

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeChange   = "change"
	TypeState    = "state"
)

// Feed errors.
var (
	ErrClientClosed = errors.New("feed client closed")
	ErrSlowClient   = errors.New("feed client send buffer full")
)

const (
	sendBuffer   = 100
	writeTimeout = 5 * time.Second
)

// Group is a property group the feed can observe.
type Group interface {
	Name() string
	Properties() []property.Property
	Subscribe(fn func(property.Change)) (cancel func())
}

// Value is one property in a snapshot.
type Value struct {
	Group string `json:"group"`
	Key   string `json:"key"`
	Unit  string `json:"unit,omitempty"`
	Value any    `json:"value"`
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Change
	Group string `json:"group,omitempty"`
	Key   string `json:"key,omitempty"`
	Field uint32 `json:"field,omitempty"`
	Old   any    `json:"old,omitempty"`
	New   any    `json:"new,omitempty"`

	// State
	State string `json:"state,omitempty"`

	// Snapshot
	ClientID string  `json:"client_id,omitempty"`
	Values   []Value `json:"values,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin:      func(r *http.Request) bool { return true },
	HandshakeTimeout: 10 * time.Second,
}

// Hub fans change messages out to every connected client.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	groups  []Group
	cancels []func()
	clients map[string]*client
	state   connection.State
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// Attach observes g. Observing counts as a subscriber, so the group's
// fields are polled while the hub is open.
func (h *Hub) Attach(g Group) {
	name := g.Name()
	cancel := g.Subscribe(func(c property.Change) {
		h.Broadcast(Message{
			Type:      TypeChange,
			Timestamp: time.Now(),
			Group:     name,
			Key:       c.Key,
			Field:     uint32(c.Field),
			Old:       c.Old,
			New:       c.New,
		})
	})

	h.mu.Lock()
	h.groups = append(h.groups, g)
	h.cancels = append(h.cancels, cancel)
	h.mu.Unlock()
}

// PublishState forwards a session state transition. It matches the
// bridge's OnStateChange signature.
func (h *Hub) PublishState(_, newState connection.State) {
	h.mu.Lock()
	h.state = newState
	h.mu.Unlock()

	h.Broadcast(Message{
		Type:      TypeState,
		Timestamp: time.Now(),
		State:     newState.String(),
	})
}

// Broadcast queues msg on every client. Clients whose buffer is full are
// dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.warnLog("marshal failed", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.debugLog("dropping client", "client_id", c.id, "error", err)
			h.remove(c)
		}
	}
}

// Snapshot returns a snapshot message of every attached group.
func (h *Hub) Snapshot() Message {
	h.mu.RLock()
	groups := make([]Group, len(h.groups))
	copy(groups, h.groups)
	state := h.state
	h.mu.RUnlock()

	msg := Message{Type: TypeSnapshot, Timestamp: time.Now(), State: state.String()}
	for _, g := range groups {
		for _, p := range g.Properties() {
			d := p.Descriptor()
			msg.Values = append(msg.Values, Value{Group: g.Name(), Key: d.Key, Unit: d.Unit, Value: p.Value()})
		}
	}
	return msg
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.warnLog("upgrade failed", "error", err)
		return
	}

	c := newClient(uuid.NewString(), conn)

	snapshot := h.Snapshot()
	snapshot.ClientID = c.id
	data, err := json.Marshal(snapshot)
	if err != nil {
		h.warnLog("marshal snapshot failed", "error", err)
		c.close()
		return
	}
	if err := c.send(data); err != nil {
		c.close()
		return
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.debugLog("client connected", "client_id", c.id, "remote", r.RemoteAddr)

	go func() {
		c.readLoop()
		h.remove(c)
	}()
}

// Close disconnects every client and stops observing the groups.
func (h *Hub) Close() {
	h.mu.Lock()
	cancels := h.cancels
	h.cancels = nil
	h.groups = nil
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if ok {
		c.close()
		h.debugLog("client disconnected", "client_id", c.id)
	}
}

func (h *Hub) debugLog(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}

func (h *Hub) warnLog(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}
