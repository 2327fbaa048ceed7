package aircraft

import (
	"fmt"
	"log/slog"

	"github.com/simbridge/simbridge-go/pkg/group"
	"github.com/simbridge/simbridge-go/pkg/property"
)

// descriptor returns the catalog entry with the given key. A missing key is
// a mismatch between the hand-written groups and the generated catalog.
func descriptor(catalog []property.Descriptor, key string) property.Descriptor {
	for _, d := range catalog {
		if d.Key == key {
			return d
		}
	}
	panic(fmt.Sprintf("aircraft: no catalog entry %q", key))
}

// Aircraft holds airframe identity.
type Aircraft struct {
	*group.Base

	Title       *property.Cell[string]
	TotalWeight *property.Cell[float64]
}

// NewAircraft creates the Aircraft group.
func NewAircraft(host group.Host, logger *slog.Logger) *Aircraft {
	g := &Aircraft{
		Title:       property.NewString(descriptor(AircraftCatalog, "Title"), "", host),
		TotalWeight: property.NewFloat(descriptor(AircraftCatalog, "TotalWeight"), 0, host),
	}
	g.Base = group.NewBase(GroupAircraft, "Aircraft", host, logger, g.Title, g.TotalWeight)
	return g
}

// ElectricalSystems holds the electrical switches.
type ElectricalSystems struct {
	*group.Base

	// MasterBattery is refreshed by TOGGLE_MASTER_BATTERY notifications,
	// never by polling.
	MasterBattery *property.Cell[bool]
}

// NewElectricalSystems creates the ElectricalSystems group.
func NewElectricalSystems(host group.Host, logger *slog.Logger) *ElectricalSystems {
	g := &ElectricalSystems{
		MasterBattery: property.NewBool(descriptor(ElectricalSystemsCatalog, "MasterBattery"), false, host),
	}
	g.Base = group.NewBase(GroupElectricalSystems, "ElectricalSystems", host, logger, g.MasterBattery)
	return g
}

// Fuel holds the center tank and fuel totals.
type Fuel struct {
	*group.Base

	TankCenterLevel     *property.Cell[float64]
	TankCenterQuantity  *property.Cell[float64]
	TankCenterCapacity  *property.Cell[float64]
	TotalQuantityWeight *property.Cell[float64]
	TotalQuantity       *property.Cell[float64]
	TotalCapacity       *property.Cell[float64]
}

// NewFuel creates the Fuel group.
func NewFuel(host group.Host, logger *slog.Logger) *Fuel {
	cell := func(key string) *property.Cell[float64] {
		return property.NewFloat(descriptor(FuelCatalog, key), 0, host)
	}
	g := &Fuel{
		TankCenterLevel:     cell("TankCenterLevel"),
		TankCenterQuantity:  cell("TankCenterQuantity"),
		TankCenterCapacity:  cell("TankCenterCapacity"),
		TotalQuantityWeight: cell("TotalQuantityWeight"),
		TotalQuantity:       cell("TotalQuantity"),
		TotalCapacity:       cell("TotalCapacity"),
	}
	g.Base = group.NewBase(GroupFuel, "Fuel", host, logger,
		g.TankCenterLevel,
		g.TankCenterQuantity,
		g.TankCenterCapacity,
		g.TotalQuantityWeight,
		g.TotalQuantity,
		g.TotalCapacity,
	)
	return g
}

// PositionSpeed holds position and heading. Angles are in radians.
type PositionSpeed struct {
	*group.Base

	Latitude        *property.Cell[float64]
	Longitude       *property.Cell[float64]
	MSLAltitude     *property.Cell[float64]
	AGLAltitude     *property.Cell[float64]
	MagneticHeading *property.Cell[float64]
	TrueHeading     *property.Cell[float64]
}

// NewPositionSpeed creates the PositionSpeed group.
func NewPositionSpeed(host group.Host, logger *slog.Logger) *PositionSpeed {
	cell := func(key string) *property.Cell[float64] {
		return property.NewFloat(descriptor(PositionSpeedCatalog, key), 0, host)
	}
	g := &PositionSpeed{
		Latitude:        cell("Latitude"),
		Longitude:       cell("Longitude"),
		MSLAltitude:     cell("MSLAltitude"),
		AGLAltitude:     cell("AGLAltitude"),
		MagneticHeading: cell("MagneticHeading"),
		TrueHeading:     cell("TrueHeading"),
	}
	g.Base = group.NewBase(GroupPositionSpeed, "PositionSpeed", host, logger,
		g.Latitude,
		g.Longitude,
		g.MSLAltitude,
		g.AGLAltitude,
		g.MagneticHeading,
		g.TrueHeading,
	)
	return g
}

// FlightInstrumentation holds cockpit instrument readings.
type FlightInstrumentation struct {
	*group.Base

	IndicatedAirspeed *property.Cell[float64]
}

// NewFlightInstrumentation creates the FlightInstrumentation group.
func NewFlightInstrumentation(host group.Host, logger *slog.Logger) *FlightInstrumentation {
	g := &FlightInstrumentation{
		IndicatedAirspeed: property.NewFloat(descriptor(FlightInstrumentationCatalog, "IndicatedAirspeed"), 0, host),
	}
	g.Base = group.NewBase(GroupFlightInstrumentation, "FlightInstrumentation", host, logger, g.IndicatedAirspeed)
	return g
}
