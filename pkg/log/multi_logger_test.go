package log

import "testing"

func TestMultiLogger(t *testing.T) {
	var a, b []Event
	m := NewMultiLogger(
		LoggerFunc(func(e Event) { a = append(a, e) }),
		nil,
		LoggerFunc(func(e Event) { b = append(b, e) }),
	)

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (nil skipped)", m.Len())
	}

	m.Log(Event{SessionID: "s1"})
	m.Log(Event{SessionID: "s2"})

	if len(a) != 2 || len(b) != 2 {
		t.Errorf("fan-out: a=%d b=%d, want 2 each", len(a), len(b))
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{})
}
