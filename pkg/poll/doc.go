// Package poll provides the fixed-cadence tick source of the bridge.
//
// A Scheduler runs a list of named passes on every tick. Passes run in
// registration order and independently of each other: an error or panic in
// one pass is logged and the remaining passes, and later ticks, still run.
// Passes must not block on replies from the peer.
//
// Flag holds a derived boolean, such as whether a session can be started,
// and reports only real flips to its listener.
package poll
