package log

import "time"

// Event is one trace record. CBOR encoding uses integer keys for
// compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the session (UUID); empty outside a session.
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow relative to the bridge.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	// Group is the name of the property group involved, if any.
	Group string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Native       *NativeEvent       `cbor:"10,keyasint,omitempty"`
	StateChange  *StateChangeEvent  `cbor:"11,keyasint,omitempty"`
	Subscription *SubscriptionEvent `cbor:"12,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"13,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates a message from the peer.
	DirectionIn Direction = 0
	// DirectionOut indicates a call into the peer.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a session state change.
	CategoryState Category = 0
	// CategoryDeclare indicates a field declaration or event binding.
	CategoryDeclare Category = 1
	// CategoryRequest indicates an outbound value request.
	CategoryRequest Category = 2
	// CategoryWrite indicates an outbound value write.
	CategoryWrite Category = 3
	// CategoryValue indicates an inbound value reply.
	CategoryValue Category = 4
	// CategoryEvent indicates an inbound event notification.
	CategoryEvent Category = 5
	// CategorySubscription indicates a reference count change.
	CategorySubscription Category = 6
	// CategoryError indicates an error event.
	CategoryError Category = 7
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryDeclare:
		return "DECLARE"
	case CategoryRequest:
		return "REQUEST"
	case CategoryWrite:
		return "WRITE"
	case CategoryValue:
		return "VALUE"
	case CategoryEvent:
		return "EVENT"
	case CategorySubscription:
		return "SUBSCRIPTION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory returns the category with the given name.
func ParseCategory(s string) (Category, bool) {
	for c := CategoryState; c <= CategoryError; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// NativeEvent captures a native call or inbound message.
type NativeEvent struct {
	// Field is the field id (declare, request, write, value).
	Field uint32 `cbor:"1,keyasint,omitempty"`

	// Name is the native field or event name.
	Name string `cbor:"2,keyasint,omitempty"`

	// Request is the request id of a value request.
	Request uint32 `cbor:"3,keyasint,omitempty"`

	// NotificationGroup is the group id of an event notification.
	NotificationGroup uint32 `cbor:"4,keyasint,omitempty"`

	// EventID is the client event id.
	EventID uint32 `cbor:"5,keyasint,omitempty"`

	// Data is the event's data word.
	Data uint32 `cbor:"6,keyasint,omitempty"`

	// Payload is the raw value bytes (write, value).
	Payload []byte `cbor:"7,keyasint,omitempty"`
}

// StateChangeEvent captures a session transition.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`

	// PeerName is the name reported by the open handshake.
	PeerName string `cbor:"4,keyasint,omitempty"`
}

// SubscriptionAction is the kind of reference count change.
type SubscriptionAction uint8

const (
	// SubscriptionAdd indicates a new handle.
	SubscriptionAdd SubscriptionAction = 0
	// SubscriptionRemove indicates a released handle.
	SubscriptionRemove SubscriptionAction = 1
	// SubscriptionClearGroup indicates a cleared notification group.
	SubscriptionClearGroup SubscriptionAction = 2
)

// String returns the action name.
func (a SubscriptionAction) String() string {
	switch a {
	case SubscriptionAdd:
		return "ADD"
	case SubscriptionRemove:
		return "REMOVE"
	case SubscriptionClearGroup:
		return "CLEAR_GROUP"
	default:
		return "UNKNOWN"
	}
}

// SubscriptionEvent captures a reference count change.
type SubscriptionEvent struct {
	Action SubscriptionAction `cbor:"1,keyasint"`

	// Field is the field id (add, remove).
	Field uint32 `cbor:"2,keyasint,omitempty"`

	// Key is the property name.
	Key string `cbor:"3,keyasint,omitempty"`

	// Refs is the reference count after the change.
	Refs int `cbor:"4,keyasint"`
}

// ErrorEventData captures errors.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Code is the native exception code (if applicable).
	Code *int `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
