package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects trace events. Zero fields match everything.
type Filter struct {
	// SessionID filters by exact session id.
	SessionID string

	// Direction filters by message direction.
	Direction *Direction

	// Category filters by event category.
	Category *Category

	// Group filters by property group name.
	Group string

	// Field filters native and subscription events by field id.
	Field *uint32

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// Matches reports whether event satisfies every criterion.
func (f *Filter) Matches(event Event) bool {
	if f.SessionID != "" && event.SessionID != f.SessionID {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.Group != "" && event.Group != f.Group {
		return false
	}
	if f.Field != nil && eventField(event) != *f.Field {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

func eventField(event Event) uint32 {
	switch {
	case event.Native != nil:
		return event.Native.Field
	case event.Subscription != nil:
		return event.Subscription.Field
	default:
		return 0
	}
}

// Reader streams trace events from a CBOR file. A file cut short by a
// crash ends at the last complete event; Truncated reports it.
type Reader struct {
	c         io.Closer
	decoder   *cbor.Decoder
	filter    Filter
	truncated bool
}

// NewReader opens a trace file and reads every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens a trace file and reads events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &Reader{
		c:       f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next matching event, or io.EOF at the end of the file.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		err := r.decoder.Decode(&event)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return Event{}, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			r.truncated = true
			return Event{}, io.EOF
		default:
			return Event{}, fmt.Errorf("decode trace event: %w", err)
		}
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Truncated reports whether the file ended inside an event.
func (r *Reader) Truncated() bool {
	return r.truncated
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.c.Close()
}

// ReadAll returns every event in path that matches filter.
func ReadAll(path string, filter Filter) ([]Event, error) {
	r, err := NewFilteredReader(path, filter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []Event
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}
