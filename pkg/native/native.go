package native

import (
	"context"
	"errors"
)

// Native layer errors.
var (
	ErrClosed         = errors.New("native connection closed")
	ErrUnknownField   = errors.New("field not declared")
	ErrUnknownEvent   = errors.New("client event not mapped")
	ErrPeerNotRunning = errors.New("peer process not running")
)

// FieldID names one native field across the whole catalog.
type FieldID uint32

// RequestID tags an outbound value request.
type RequestID uint32

// GroupID identifies a notification group.
type GroupID uint32

// EventID identifies a client event mapped to a native event name.
type EventID uint32

// DataType is the native representation of a field value.
type DataType uint8

const (
	// DataTypeInvalid is the zero value and never valid on the wire.
	DataTypeInvalid DataType = iota

	// DataTypeInt32 is a 32-bit signed integer (used for booleans).
	DataTypeInt32

	// DataTypeInt64 is a 64-bit signed integer.
	DataTypeInt64

	// DataTypeFloat64 is an IEEE-754 double.
	DataTypeFloat64

	// DataTypeString256 is a NUL-padded fixed 256 byte string.
	DataTypeString256
)

// String returns the data type name.
func (d DataType) String() string {
	switch d {
	case DataTypeInt32:
		return "INT32"
	case DataTypeInt64:
		return "INT64"
	case DataTypeFloat64:
		return "FLOAT64"
	case DataTypeString256:
		return "STRING256"
	default:
		return "INVALID"
	}
}

// FieldDecl describes one field to the native layer.
type FieldDecl struct {
	ID   FieldID
	Name string
	// Unit is the native unit name; empty means unitless.
	Unit string
	Type DataType
}

// Handler receives inbound messages from Conn.Drain.
// Implementations must not block; they run on the pumping goroutine.
type Handler interface {
	// HandleOpen reports the completed open handshake and the peer's name.
	HandleOpen(peerName string)

	// HandleQuit reports that the peer is shutting down.
	HandleQuit()

	// HandleError reports a native exception code.
	HandleError(code uint32)

	// HandleValue delivers the current value of a declared field.
	HandleValue(field FieldID, payload []byte)

	// HandleEvent delivers a client event raised in a notification group.
	HandleEvent(group GroupID, event EventID, data uint32)
}

// Transport opens sessions with the peer process.
type Transport interface {
	// Open starts a session for the given client identity. Inbound messages,
	// including the open handshake, are delivered to h by Conn.Drain.
	Open(ctx context.Context, identity string, h Handler) (Conn, error)
}

// Conn is an open native handle.
type Conn interface {
	// DeclareField adds a field definition. Must be called once per field
	// before any request that references it.
	DeclareField(decl FieldDecl) error

	// BindWriteEvent maps a client event id to a native event name.
	BindWriteEvent(event EventID, name string) error

	// AddEventToGroup adds a mapped client event to a notification group.
	AddEventToGroup(group GroupID, event EventID) error

	// RequestValue asks for the current value of a field. The reply arrives
	// later through HandleValue; the call never waits for it.
	RequestValue(req RequestID, field FieldID) error

	// WriteValue sets a field on the peer.
	WriteValue(field FieldID, payload []byte) error

	// ClearGroup removes every event from a notification group.
	ClearGroup(group GroupID) error

	// Drain delivers all pending inbound messages to the Handler.
	Drain() error

	// Close releases the handle. Safe to call more than once.
	Close() error
}

// PeerProbe reports whether the peer process is present on this host.
type PeerProbe interface {
	PeerRunning() bool
}

// ProbeFunc adapts a function to PeerProbe.
type ProbeFunc func() bool

// PeerRunning calls f.
func (f ProbeFunc) PeerRunning() bool { return f() }
