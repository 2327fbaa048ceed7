package bridge

import (
	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/property"
)

// Group is a named collection of property cells sharing one notification
// group. The bridge calls the session hooks on every open and teardown.
type Group interface {
	ID() native.GroupID
	Name() string

	// Properties returns the group's cells in catalog order.
	Properties() []property.Property

	// SessionOpened declares every field and re-subscribes if the group
	// has observers.
	SessionOpened()

	// SessionClosed drops subscription handles and restores defaults.
	SessionClosed()

	// ResetValues restores defaults without touching subscriptions.
	ResetValues()

	ReceiveValue(field native.FieldID, payload []byte) error
	ReceiveEvent(event native.EventID, data uint32) error
}
