package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeTrace(t *testing.T, events ...Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, ev := range events {
		logger.Log(ev)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	defer r.Close()

	var events []Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		events = append(events, ev)
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	now := time.Now()
	path := writeTrace(t,
		Event{Timestamp: now, SessionID: "s1", Category: CategoryState,
			StateChange: &StateChangeEvent{OldState: "CONNECTING", NewState: "CONNECTED", PeerName: "sim"}},
		Event{Timestamp: now, SessionID: "s1", Direction: DirectionOut, Category: CategoryRequest,
			Native: &NativeEvent{Field: 10, Request: 10}},
		Event{Timestamp: now, SessionID: "s1", Direction: DirectionIn, Category: CategoryValue,
			Native: &NativeEvent{Field: 10, Payload: []byte{0, 0, 0, 0, 0, 0, 0x45, 0x40}}},
	)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	events := readAll(t, r)

	if len(events) != 3 {
		t.Fatalf("read %d events, want 3", len(events))
	}
	if events[0].StateChange == nil || events[0].StateChange.PeerName != "sim" {
		t.Errorf("state event = %+v", events[0].StateChange)
	}
	if events[2].Native == nil || len(events[2].Native.Payload) != 8 {
		t.Errorf("value event = %+v", events[2].Native)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := writeTrace(t, Event{Timestamp: time.Now(), Category: CategoryState,
		StateChange: &StateChangeEvent{NewState: "CONNECTING"}})

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(Event{Timestamp: time.Now(), Category: CategoryState,
		StateChange: &StateChangeEvent{NewState: "CONNECTED"}})
	logger.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if n := len(readAll(t, r)); n != 2 {
		t.Errorf("read %d events, want 2", n)
	}
}

func TestFileLoggerIgnoresAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.blog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Close()
	logger.Log(Event{Timestamp: time.Now()})

	if err := logger.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("file size = %d, want 0", info.Size())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.blog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(field uint32) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Log(Event{Timestamp: time.Now(), Category: CategoryRequest,
					Native: &NativeEvent{Field: field}})
			}
		}(uint32(i + 1))
	}
	wg.Wait()

	written, failed := logger.Stats()
	logger.Close()
	if written != 100 || failed != 0 {
		t.Errorf("Stats() = %d, %d; want 100, 0", written, failed)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if n := len(readAll(t, r)); n != 100 {
		t.Errorf("read %d events, want 100", n)
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Now()
	path := writeTrace(t,
		Event{Timestamp: base, SessionID: "a", Category: CategoryRequest, Group: "Fuel",
			Native: &NativeEvent{Field: 10}},
		Event{Timestamp: base.Add(time.Second), SessionID: "a", Category: CategoryValue, Group: "Fuel",
			Native: &NativeEvent{Field: 11}},
		Event{Timestamp: base.Add(2 * time.Second), SessionID: "b", Category: CategorySubscription,
			Subscription: &SubscriptionEvent{Field: 10, Refs: 1}},
	)

	field := uint32(10)
	value := CategoryValue
	end := base.Add(1500 * time.Millisecond)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"session", Filter{SessionID: "a"}, 2},
		{"category", Filter{Category: &value}, 1},
		{"field", Filter{Field: &field}, 2},
		{"group", Filter{Group: "Fuel"}, 2},
		{"time", Filter{TimeEnd: &end}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			if n := len(readAll(t, r)); n != tt.want {
				t.Errorf("read %d events, want %d", n, tt.want)
			}
		})
	}
}

func TestNewReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.blog")); err == nil {
		t.Error("expected error for missing file")
	}
}
