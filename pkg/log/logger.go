package log

// Logger receives trace events. Implementations must be safe for
// concurrent use and must not block: Log runs on the bridge's goroutines.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards all events. The zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

// Log calls f.
func (f LoggerFunc) Log(event Event) { f(event) }

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)
