package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/simbridge/simbridge-go/pkg/native"
)

// Connection errors.
var (
	ErrAlreadyOpen  = errors.New("session already open")
	ErrNotConnected = errors.New("not connected")
	ErrOpenAborted  = errors.New("session closed while opening")
)

// State represents the session state.
type State uint8

const (
	// StateDisconnected indicates no native handle exists.
	StateDisconnected State = iota

	// StateConnecting indicates a handle is open and the handshake is pending.
	StateConnecting

	// StateConnected indicates the peer confirmed the session.
	StateConnected
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Manager manages the session lifecycle.
type Manager struct {
	mu sync.RWMutex

	transport native.Transport

	// Session
	state     State
	conn      native.Conn
	peerName  string
	sessionID string

	// gen increments on every teardown so an Open racing a Close can
	// detect that its session was abandoned.
	gen uint64

	// Callbacks
	onStateChange  func(oldState, newState State)
	onConnected    func()
	onDisconnected func(reason string)
}

// NewManager creates a session manager for the given transport.
func NewManager(transport native.Transport) *Manager {
	return &Manager{
		transport: transport,
		state:     StateDisconnected,
	}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true after the open handshake.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateConnected
}

// PeerName returns the name reported by the open handshake.
func (m *Manager) PeerName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.peerName
}

// SessionID returns the identifier of the current session, or "".
func (m *Manager) SessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// Conn returns the native handle, or ErrNotConnected when none is open.
func (m *Manager) Conn() (native.Conn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.conn == nil {
		return nil, ErrNotConnected
	}
	return m.conn, nil
}

// Open opens a native handle for identity. Inbound messages go to h.
// If a session already exists it is torn down and ErrAlreadyOpen returned.
func (m *Manager) Open(ctx context.Context, identity string, h native.Handler) error {
	m.mu.Lock()
	if m.state != StateDisconnected {
		m.mu.Unlock()
		m.Close("open requested while a session exists")
		return ErrAlreadyOpen
	}
	m.state = StateConnecting
	gen := m.gen
	onStateChange := m.onStateChange
	m.mu.Unlock()

	if onStateChange != nil {
		onStateChange(StateDisconnected, StateConnecting)
	}

	conn, err := m.transport.Open(ctx, identity, h)

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrOpenAborted
	}
	if err != nil {
		m.state = StateDisconnected
		m.mu.Unlock()
		if onStateChange != nil {
			onStateChange(StateConnecting, StateDisconnected)
		}
		return fmt.Errorf("open session: %w", err)
	}
	m.conn = conn
	m.sessionID = uuid.NewString()
	m.mu.Unlock()

	return nil
}

// MarkOpened completes the handshake. It returns false if no session was
// waiting for one (a duplicate or late handshake).
func (m *Manager) MarkOpened(peerName string) bool {
	m.mu.Lock()
	if m.state != StateConnecting || m.conn == nil {
		m.mu.Unlock()
		return false
	}
	m.state = StateConnected
	m.peerName = peerName
	onStateChange := m.onStateChange
	onConnected := m.onConnected
	m.mu.Unlock()

	if onStateChange != nil {
		onStateChange(StateConnecting, StateConnected)
	}
	if onConnected != nil {
		onConnected()
	}
	return true
}

// Close releases the native handle and returns to DISCONNECTED.
// It returns false if there was nothing to close.
func (m *Manager) Close(reason string) bool {
	m.mu.Lock()
	if m.state == StateDisconnected && m.conn == nil {
		m.mu.Unlock()
		return false
	}

	oldState := m.state
	conn := m.conn
	m.conn = nil
	m.state = StateDisconnected
	m.peerName = ""
	m.sessionID = ""
	m.gen++
	onStateChange := m.onStateChange
	onDisconnected := m.onDisconnected
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	if onStateChange != nil {
		onStateChange(oldState, StateDisconnected)
	}
	if onDisconnected != nil {
		onDisconnected(reason)
	}
	return true
}

// OnStateChange sets a callback for state changes.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// OnConnected sets a callback for completed handshakes.
func (m *Manager) OnConnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnected = fn
}

// OnDisconnected sets a callback for session teardown.
func (m *Manager) OnDisconnected(fn func(reason string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnected = fn
}
