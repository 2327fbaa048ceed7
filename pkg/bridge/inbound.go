package bridge

import (
	"time"

	"github.com/simbridge/simbridge-go/pkg/log"
	"github.com/simbridge/simbridge-go/pkg/native"
)

// inbound receives native messages on the pumping goroutine.
type inbound struct {
	b *Bridge
}

var _ native.Handler = inbound{}

func (in inbound) HandleOpen(peerName string) {
	if !in.b.conn.MarkOpened(peerName) {
		in.b.debugLog("ignoring handshake without pending session", "peer", peerName)
	}
}

func (in inbound) HandleQuit() {
	in.b.infoLog("peer quit")
	in.b.reset("peer quit")
}

func (in inbound) HandleError(code uint32) {
	c := int(code)
	in.b.warnLog("native exception", "code", code)
	in.b.traceError("native exception", &c, "peer")
}

func (in inbound) HandleValue(field native.FieldID, payload []byte) {
	in.b.trace.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: in.b.conn.SessionID(),
		Direction: log.DirectionIn,
		Category:  log.CategoryValue,
		Group:     in.b.groupName(field),
		Native:    &log.NativeEvent{Field: uint32(field), Payload: payload},
	})
	in.b.router.RouteValue(field, payload)
}

func (in inbound) HandleEvent(group native.GroupID, event native.EventID, data uint32) {
	in.b.trace.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: in.b.conn.SessionID(),
		Direction: log.DirectionIn,
		Category:  log.CategoryEvent,
		Native: &log.NativeEvent{
			NotificationGroup: uint32(group),
			EventID:           uint32(event),
			Data:              data,
		},
	})
	in.b.router.RouteEvent(group, event, data)
}
