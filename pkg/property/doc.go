// Package property implements typed property cells.
//
// A Cell holds the last decoded value of one native field together with the
// metadata needed to declare, request and write it. Cells are mutated only
// by decoding an inbound payload or by resetting to their default; every
// real change, and only a real change, is reported to listeners.
//
// # Writes
//
// Writable cells expose Set. A write never touches the cached value: the
// cell issues one native write followed by one value request, and the
// authoritative value arrives through Decode like any other reply. Writing
// the value already cached is a no-op.
//
// # Precision
//
// Float cells round decoded values to Descriptor.Decimals using round-half-
// to-even before comparing, so jitter below the configured precision never
// produces a notification.
package property
