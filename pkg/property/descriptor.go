package property

import (
	"errors"

	"github.com/simbridge/simbridge-go/pkg/native"
)

// Cell errors.
var (
	ErrReadOnly = errors.New("property is read-only")
	ErrNoWriter = errors.New("property has no writer")
)

// NoRounding disables precision rounding for float cells.
const NoRounding = -1

// EventBinding maps a writable field to a native client event.
type EventBinding struct {
	ID   native.EventID
	Name string
}

// Descriptor is the static metadata of a property cell.
type Descriptor struct {
	// Key is the public name of the property (e.g. "FuelTotalQuantity").
	Key string

	// Field is the native field id; unique across all groups.
	Field native.FieldID

	// Request tags value requests for this field.
	Request native.RequestID

	// Group is the owning notification group.
	Group native.GroupID

	// Name is the native field name (e.g. "FUEL TOTAL QUANTITY").
	Name string

	// Unit is the native unit; empty when the field is unitless.
	Unit string

	// Type is the native data type.
	Type native.DataType

	// Decimals is the rounding precision for float values, or NoRounding.
	Decimals int

	// Writable enables Set.
	Writable bool

	// Event is the optional write-event binding. Event-bound cells are
	// refreshed by notifications instead of polling.
	Event *EventBinding
}

// Decl returns the native field declaration.
func (d Descriptor) Decl() native.FieldDecl {
	return native.FieldDecl{
		ID:   d.Field,
		Name: d.Name,
		Unit: d.Unit,
		Type: d.Type,
	}
}

// EventBound returns true if the field carries a write-event binding.
func (d Descriptor) EventBound() bool {
	return d.Event != nil && d.Event.Name != ""
}

// Writer is the native write path used by Set.
type Writer interface {
	WriteValue(d Descriptor, payload []byte) error
	RequestValue(d Descriptor) error
}

// Change describes a value mutation.
type Change struct {
	Key   string
	Field native.FieldID
	Old   any
	New   any
}

// Property is the type-erased view of a Cell used by groups and the bridge.
type Property interface {
	Descriptor() Descriptor

	// Decode applies a raw payload and reports whether the value changed.
	Decode(payload []byte) (bool, error)

	// Reset restores the default value and reports whether it changed.
	Reset() bool

	// Value returns the current value.
	Value() any

	// SetText parses s according to the cell type and writes it.
	SetText(s string) error

	// OnChange registers a listener; the returned func removes it.
	OnChange(fn func(Change)) (cancel func())
}
