package aircraft

import (
	"log/slog"

	"github.com/simbridge/simbridge-go/pkg/bridge"
	"github.com/simbridge/simbridge-go/pkg/group"
)

// Registrar is the part of a bridge that accepts groups.
type Registrar interface {
	group.Host
	AddGroup(g bridge.Group) error
}

// Set bundles every aircraft group.
type Set struct {
	Aircraft              *Aircraft
	ElectricalSystems     *ElectricalSystems
	Fuel                  *Fuel
	PositionSpeed         *PositionSpeed
	FlightInstrumentation *FlightInstrumentation
}

// NewSet creates every group and registers it with r.
func NewSet(r Registrar, logger *slog.Logger) (*Set, error) {
	s := &Set{
		Aircraft:              NewAircraft(r, logger),
		ElectricalSystems:     NewElectricalSystems(r, logger),
		Fuel:                  NewFuel(r, logger),
		PositionSpeed:         NewPositionSpeed(r, logger),
		FlightInstrumentation: NewFlightInstrumentation(r, logger),
	}
	for _, g := range s.Groups() {
		if err := r.AddGroup(g); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Groups returns the groups in catalog order.
func (s *Set) Groups() []bridge.Group {
	return []bridge.Group{s.Aircraft, s.ElectricalSystems, s.Fuel, s.PositionSpeed, s.FlightInstrumentation}
}
