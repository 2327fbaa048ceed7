// Package bridge ties the session, the subscription registry, the inbound
// demultiplexer and the polling scheduler together into one explicitly
// constructed Bridge.
//
// # Usage
//
//	b, err := bridge.New(transport, probe, bridge.DefaultConfig())
//	fuel := aircraft.NewFuel(b, nil)
//	b.AddGroup(fuel)
//	b.Start(ctx)             // scheduler and message pump
//	b.Initialize(ctx)        // open a session; groups declare on handshake
//	cancel := fuel.Subscribe(func(c property.Change) { ... })
//
// # Threads of control
//
// Three sources call into the bridge concurrently: the scheduler tick, the
// message pump (Drain) and application calls. Each table has its own lock;
// callbacks and change notifications always run outside of them, on the
// goroutine that caused the change.
//
// # Failures
//
// Native exception codes are logged and traced. A failed Drain or a quit
// message from the peer tears the session down exactly like Reset: every
// table is cleared, groups restore their defaults, and groups with live
// observers subscribe again after the next handshake.
package bridge
