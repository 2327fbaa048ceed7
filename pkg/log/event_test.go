package log

import (
	"testing"
	"time"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{CategoryState, "STATE"},
		{CategoryDeclare, "DECLARE"},
		{CategoryRequest, "REQUEST"},
		{CategoryWrite, "WRITE"},
		{CategoryValue, "VALUE"},
		{CategoryEvent, "EVENT"},
		{CategorySubscription, "SUBSCRIPTION"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("VALUE")
	if !ok || c != CategoryValue {
		t.Errorf("ParseCategory(VALUE) = %v, %v", c, ok)
	}
	if _, ok := ParseCategory("FRAME"); ok {
		t.Error("ParseCategory(FRAME) should fail")
	}
}

func TestEventCBORRoundTrip(t *testing.T) {
	code := 7
	ts := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	in := Event{
		Timestamp: ts,
		SessionID: "3b6f0c8e-0000-4000-8000-000000000001",
		Direction: DirectionIn,
		Category:  CategoryError,
		Error:     &ErrorEventData{Message: "native exception", Code: &code, Context: "drain"},
	}

	data, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}

	if !out.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v (nanoseconds must survive)", out.Timestamp, ts)
	}
	if out.Error == nil || out.Error.Code == nil || *out.Error.Code != 7 {
		t.Fatalf("Error = %+v", out.Error)
	}
	if out.Native != nil || out.StateChange != nil || out.Subscription != nil {
		t.Error("unset payloads should stay nil")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	ev := Event{
		Timestamp: time.Unix(0, 42).UTC(),
		Category:  CategoryWrite,
		Direction: DirectionOut,
		Native:    &NativeEvent{Field: 3, Name: "ELECTRICAL MASTER BATTERY", Payload: []byte{1, 0, 0, 0}},
	}
	a, _ := EncodeEvent(ev)
	b, _ := EncodeEvent(ev)
	if string(a) != string(b) {
		t.Error("encoding the same event twice differs")
	}
}
