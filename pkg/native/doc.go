// Package native defines the capability the bridge requires from the native
// messaging layer of the simulator.
//
// The native layer is an external collaborator: it owns the process handle,
// marshals flat fixed-layout structs and pumps host messages. The bridge only
// sees the small operation set declared here.
//
// # Session
//
// A Transport opens a Conn for a client identity. The open handshake is not
// complete when Open returns: the peer confirms it later by delivering
// HandleOpen through Drain, together with every other inbound message.
//
// # Identifiers
//
// Fields, requests, notification groups and client events are addressed by
// typed integers. Field identifiers are unique across the whole catalog and
// double as the demultiplexing key for value replies.
//
// # Pumping
//
// Inbound messages queue inside the native layer until the host calls
// Conn.Drain. Drain invokes the Handler synchronously, on the caller's
// goroutine, once per pending message.
package native
