package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewSlogAdapter(slogger).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterNativeEvent(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		SessionID: "s1",
		Direction: DirectionOut,
		Category:  CategoryRequest,
		Group:     "Fuel",
		Native:    &NativeEvent{Field: 10, Name: "FUEL TOTAL QUANTITY", Request: 10},
	})

	want := map[string]any{
		"msg":        "trace",
		"session_id": "s1",
		"direction":  "OUT",
		"category":   "REQUEST",
		"group":      "Fuel",
		"field":      float64(10),
		"name":       "FUEL TOTAL QUANTITY",
		"request":    float64(10),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %v", k, entry[k], v)
		}
	}
}

func TestSlogAdapterStateChange(t *testing.T) {
	entry := logOne(t, Event{
		Category:    CategoryState,
		StateChange: &StateChangeEvent{OldState: "CONNECTED", NewState: "DISCONNECTED", Reason: "quit"},
	})

	if entry["new_state"] != "DISCONNECTED" || entry["reason"] != "quit" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSlogAdapterError(t *testing.T) {
	code := 3
	entry := logOne(t, Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Message: "exception", Code: &code},
	})

	if entry["error_code"] != float64(3) {
		t.Errorf("error_code = %v, want 3", entry["error_code"])
	}
}

func TestSlogAdapterBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	NewSlogAdapter(slogger).Log(Event{Category: CategoryValue})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}
