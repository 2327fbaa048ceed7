package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/simbridge/simbridge-go/pkg/log"
)

// RunExport writes every matching event as one JSON object per line.
// An empty output path writes to stdout.
func RunExport(path string, filter log.Filter, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return exportJSONL(path, filter, w)
}

func exportJSONL(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := enc.Encode(toJSON(event)); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
}

// jsonEvent is the export shape of a trace event.
type jsonEvent struct {
	Timestamp    string                `json:"timestamp"`
	SessionID    string                `json:"session_id,omitempty"`
	Direction    string                `json:"direction"`
	Category     string                `json:"category"`
	Group        string                `json:"group,omitempty"`
	Native       *log.NativeEvent      `json:"native,omitempty"`
	StateChange  *log.StateChangeEvent `json:"state_change,omitempty"`
	Subscription *jsonSubscription     `json:"subscription,omitempty"`
	Error        *log.ErrorEventData   `json:"error,omitempty"`
}

type jsonSubscription struct {
	Action string `json:"action"`
	Field  uint32 `json:"field"`
	Key    string `json:"key,omitempty"`
	Refs   int    `json:"refs"`
}

func toJSON(e log.Event) jsonEvent {
	out := jsonEvent{
		Timestamp:   e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		SessionID:   e.SessionID,
		Direction:   e.Direction.String(),
		Category:    e.Category.String(),
		Group:       e.Group,
		Native:      e.Native,
		StateChange: e.StateChange,
		Error:       e.Error,
	}
	if s := e.Subscription; s != nil {
		out.Subscription = &jsonSubscription{Action: s.Action.String(), Field: s.Field, Key: s.Key, Refs: s.Refs}
	}
	return out
}
