package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends trace events to a file in CBOR format.
// It is safe for concurrent use.
type FileLogger struct {
	mu      sync.Mutex
	w       io.WriteCloser
	encoder *cbor.Encoder
	closed  bool
	written int
	failed  int
}

// NewFileLogger opens path for appending, creating it with mode 0644.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return NewStreamLogger(f), nil
}

// NewStreamLogger writes events to w and closes it on Close.
func NewStreamLogger(w io.WriteCloser) *FileLogger {
	return &FileLogger{
		w:       w,
		encoder: NewEncoder(w),
	}
}

// Log writes an event. Encoding errors are counted, never returned: the
// trace must not disrupt the bridge.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil {
		l.failed++
		return
	}
	l.written++
}

// Stats returns the number of written and failed events.
func (l *FileLogger) Stats() (written, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.failed
}

// Close closes the underlying writer. Later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.w.Close()
}

var _ Logger = (*FileLogger)(nil)
