// Package subscription implements the reference-counted subscription
// registry of the bridge.
//
// Every subscribed cell is one entry keyed by its field id. An entry's
// reference count is the number of live handles for that field; the first
// handle activates the field and the last one deactivates it.
//
// # Activation
//
// On the 0 to 1 transition the registry:
//   - declares the field with the native layer, once per session,
//   - installs the value route so replies reach the owner,
//   - either adds the field's event to its notification group (event-bound
//     fields) or adds the field to the polling set,
//   - issues exactly one initial value request.
//
// Event-bound fields are never polled.
//
// # Deactivation
//
// On the 1 to 0 transition the field leaves the polling set (or its event
// leaves the group's active set) and the value route is removed. Declarations
// are never undone within a session. When a group's active set empties the
// group is cleared natively.
//
// # Lifecycle
//
// Entries do NOT survive the session. Open activates the registry for a new
// session; Clear drops every entry, route and declaration and invalidates all
// outstanding handles. Owners re-subscribe after the next Open.
package subscription
