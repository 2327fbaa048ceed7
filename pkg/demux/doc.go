// Package demux routes inbound native messages to the owner that declared
// them.
//
// Value replies are keyed by field id, event notifications by notification
// group id. A message with no route is dropped: the reply may belong to a
// field whose last observer left while the request was in flight, or to a
// session that has already been torn down. The router holds no business
// logic and never propagates an owner's error back to the native pump.
package demux
