// Package log provides the structured bridge trace.
//
// The trace is separate from operational logging (slog). It records every
// native call the bridge makes and every message it receives, stamped with
// the session id, as a machine-readable event stream for debugging.
//
// # Basic Usage
//
//	// Development: trace to the console via slog
//	cfg.Trace = log.NewSlogAdapter(slog.Default())
//
//	// Capture to a file
//	cfg.Trace, _ = log.NewFileLogger("/tmp/bridge.blog")
//
//	// Both
//	cfg.Trace = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Native: field declarations, value requests, writes, value replies and
//     event notifications (NativeEvent)
//   - State: session transitions (StateChangeEvent)
//   - Subscription: reference count changes (SubscriptionEvent)
//   - Error: native exception codes and transport failures (ErrorEventData)
//
// # File Format
//
// Trace files are a sequence of CBOR-encoded events with integer keys. The
// simbridge-log tool views and summarizes them.
package log
