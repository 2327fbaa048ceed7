// Package connection owns the single session between the bridge and the
// simulator process.
//
// # States
//
//	DISCONNECTED --Open--> CONNECTING --open handshake--> CONNECTED
//	     ^                      |                            |
//	     +------- Close (quit, fatal error, explicit reset) -+
//
// CONNECTING covers the window between the native open call returning a
// handle and the peer confirming the session. Opening while a handle exists
// is rejected with ErrAlreadyOpen and tears the existing session down, so a
// handle is never leaked.
//
// # Callbacks
//
// OnConnected fires once per session after the handshake; OnDisconnected
// fires once per session after the handle has been released and the state
// is back to DISCONNECTED. Both run synchronously on the goroutine that
// caused the transition, outside the manager's lock.
//
// # Auto-connect
//
// Backoff computes exponentially growing delays with jitter for repeated
// open attempts while the peer is present but refuses the session:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s
//  3. Maximum delay: 30 seconds
//  4. Reset to 1s after a successful handshake
package connection
