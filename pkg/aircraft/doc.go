// Package aircraft provides the property groups of a simulated aircraft.
//
// The ids and descriptor tables in catalog_gen.go are generated from
// catalog/aircraft.yaml by simbridge-catgen. The typed group types in this
// package wrap those tables in cells and register them with a bridge:
//
//	b, _ := bridge.New(transport, probe, cfg)
//	fuel := aircraft.NewFuel(b, logger)
//	b.AddGroup(fuel)
//	cancel := fuel.Subscribe(func(c property.Change) { ... })
//	defer cancel()
package aircraft

//go:generate go run ../../cmd/simbridge-catgen -catalog ../../catalog/aircraft.yaml -output .
