// Package commands implements the simbridge-log CLI commands.
package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/simbridge/simbridge-go/pkg/log"
)

// FilterOptions holds the raw filter flags shared by view and export.
type FilterOptions struct {
	SessionID string
	Direction string
	Category  string
	Group     string
	Field     string
	TimeStart string
	TimeEnd   string
}

// BuildFilter converts flag values into a log.Filter.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	f := log.Filter{SessionID: opts.SessionID, Group: opts.Group}

	if opts.Direction != "" {
		d, err := ParseDirectionFlag(opts.Direction)
		if err != nil {
			return f, err
		}
		f.Direction = &d
	}
	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	if opts.Field != "" {
		n, err := strconv.ParseUint(opts.Field, 10, 32)
		if err != nil {
			return f, fmt.Errorf("invalid field: %s", opts.Field)
		}
		field := uint32(n)
		f.Field = &field
	}
	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return f, fmt.Errorf("invalid time-start: %w", err)
		}
		f.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return f, fmt.Errorf("invalid time-end: %w", err)
		}
		f.TimeEnd = &t
	}
	return f, nil
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be state, declare, request, write, value, event, subscription or error)", s)
	}
	return c, nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)

	header := fmt.Sprintf("%s [session:%s] %-3s %s", ts, session, event.Direction, event.Category)
	if event.Group != "" {
		header += " " + event.Group
	}
	fmt.Fprintln(w, header)

	switch {
	case event.Native != nil:
		formatNativeDetails(w, event.Native)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Subscription != nil:
		formatSubscriptionDetails(w, event.Subscription)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatNativeDetails(w io.Writer, n *log.NativeEvent) {
	if n.Field != 0 {
		fmt.Fprintf(w, "  Field: %d", n.Field)
		if n.Name != "" {
			fmt.Fprintf(w, " (%s)", n.Name)
		}
		fmt.Fprintln(w)
	} else if n.Name != "" {
		fmt.Fprintf(w, "  Name: %s\n", n.Name)
	}
	if n.Request != 0 {
		fmt.Fprintf(w, "  Request: %d\n", n.Request)
	}
	if n.NotificationGroup != 0 || n.EventID != 0 {
		fmt.Fprintf(w, "  Group: %d  Event: %d  Data: %d\n", n.NotificationGroup, n.EventID, n.Data)
	}
	if len(n.Payload) > 0 {
		fmt.Fprintf(w, "  Payload: %s (%d bytes)\n", hex.EncodeToString(n.Payload), len(n.Payload))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.PeerName != "" {
		fmt.Fprintf(w, "  Peer: %s\n", sc.PeerName)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatSubscriptionDetails(w io.Writer, s *log.SubscriptionEvent) {
	fmt.Fprintf(w, "  %s field %d", s.Action, s.Field)
	if s.Key != "" {
		fmt.Fprintf(w, " (%s)", s.Key)
	}
	fmt.Fprintf(w, " refs=%d\n", s.Refs)
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// RunView prints every matching event.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
