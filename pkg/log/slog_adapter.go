package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Group != "" {
		attrs = append(attrs, slog.String("group", event.Group))
	}

	switch {
	case event.Native != nil:
		n := event.Native
		if n.Field != 0 {
			attrs = append(attrs, slog.Uint64("field", uint64(n.Field)))
		}
		if n.Name != "" {
			attrs = append(attrs, slog.String("name", n.Name))
		}
		if n.Request != 0 {
			attrs = append(attrs, slog.Uint64("request", uint64(n.Request)))
		}
		if n.NotificationGroup != 0 {
			attrs = append(attrs, slog.Uint64("notification_group", uint64(n.NotificationGroup)))
		}
		if n.EventID != 0 {
			attrs = append(attrs,
				slog.Uint64("event_id", uint64(n.EventID)),
				slog.Uint64("data", uint64(n.Data)),
			)
		}
		if len(n.Payload) > 0 {
			attrs = append(attrs, slog.Int("payload_size", len(n.Payload)))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
		if event.StateChange.PeerName != "" {
			attrs = append(attrs, slog.String("peer", event.StateChange.PeerName))
		}
	case event.Subscription != nil:
		attrs = append(attrs,
			slog.String("action", event.Subscription.Action.String()),
			slog.Int("refs", event.Subscription.Refs),
		)
		if event.Subscription.Key != "" {
			attrs = append(attrs, slog.String("key", event.Subscription.Key))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
