package bridge

import (
	"time"

	"github.com/simbridge/simbridge-go/pkg/log"
	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/property"
)

// tracedConn records every outbound native call before making it.
type tracedConn struct {
	native.Conn
	b *Bridge
}

func (c *tracedConn) DeclareField(decl native.FieldDecl) error {
	c.out(log.CategoryDeclare, decl.ID, &log.NativeEvent{Field: uint32(decl.ID), Name: decl.Name})
	return c.Conn.DeclareField(decl)
}

func (c *tracedConn) BindWriteEvent(event native.EventID, name string) error {
	c.out(log.CategoryDeclare, 0, &log.NativeEvent{EventID: uint32(event), Name: name})
	return c.Conn.BindWriteEvent(event, name)
}

func (c *tracedConn) AddEventToGroup(group native.GroupID, event native.EventID) error {
	c.out(log.CategoryDeclare, 0, &log.NativeEvent{NotificationGroup: uint32(group), EventID: uint32(event)})
	return c.Conn.AddEventToGroup(group, event)
}

func (c *tracedConn) RequestValue(req native.RequestID, field native.FieldID) error {
	c.out(log.CategoryRequest, field, &log.NativeEvent{Field: uint32(field), Request: uint32(req)})
	return c.Conn.RequestValue(req, field)
}

func (c *tracedConn) WriteValue(field native.FieldID, payload []byte) error {
	c.out(log.CategoryWrite, field, &log.NativeEvent{Field: uint32(field), Payload: payload})
	return c.Conn.WriteValue(field, payload)
}

func (c *tracedConn) ClearGroup(group native.GroupID) error {
	c.b.trace.Log(log.Event{
		Timestamp:    time.Now(),
		SessionID:    c.b.conn.SessionID(),
		Direction:    log.DirectionOut,
		Category:     log.CategorySubscription,
		Subscription: &log.SubscriptionEvent{Action: log.SubscriptionClearGroup},
		Native:       &log.NativeEvent{NotificationGroup: uint32(group)},
	})
	return c.Conn.ClearGroup(group)
}

func (c *tracedConn) out(cat log.Category, field native.FieldID, ev *log.NativeEvent) {
	c.b.trace.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.b.conn.SessionID(),
		Direction: log.DirectionOut,
		Category:  cat,
		Group:     c.b.groupName(field),
		Native:    ev,
	})
}

func (b *Bridge) groupName(field native.FieldID) string {
	if field == 0 {
		return ""
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if g, ok := b.owners[field]; ok {
		return g.Name()
	}
	return ""
}

func (b *Bridge) traceSubscription(group string, action log.SubscriptionAction, d property.Descriptor, refs int) {
	b.trace.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: b.conn.SessionID(),
		Category:  log.CategorySubscription,
		Group:     group,
		Subscription: &log.SubscriptionEvent{
			Action: action,
			Field:  uint32(d.Field),
			Key:    d.Key,
			Refs:   refs,
		},
	})
}

func (b *Bridge) traceError(msg string, code *int, context string) {
	b.trace.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: b.conn.SessionID(),
		Direction: log.DirectionIn,
		Category:  log.CategoryError,
		Error:     &log.ErrorEventData{Message: msg, Code: code, Context: context},
	})
}
