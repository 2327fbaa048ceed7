// Package group implements the reusable part of a property group: the
// catalog of cells, observer counting, and the session hooks the bridge
// calls on every open and teardown.
//
// Observers subscribe to the group as a whole. The first observer
// subscribes every cell with the host; the last one releases the handles
// and clears the notification group. Observers survive session loss: after
// the next handshake the group declares its fields again and, if it still
// has observers, subscribes again.
package group
