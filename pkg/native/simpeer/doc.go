// Package simpeer is an in-memory peer implementing native.Transport.
//
// The peer keeps a table of named values. Requests queue value replies
// encoded from that table, writes update it, and client events apply
// scripted effects (TOGGLE_MASTER_BATTERY flips the master battery).
// Nothing is delivered until the bridge drains the connection, so tests
// control exactly when replies arrive.
//
//	peer := simpeer.New("Simulator")
//	peer.Set("FUEL TOTAL QUANTITY", 42.037)
//	b, _ := bridge.New(peer, peer, cfg)
package simpeer
