package main

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/simbridge/simbridge-go/pkg/native/simpeer"
)

// Simulated aircraft.
const (
	simTitle         = "Cessna Skyhawk"
	simEmptyWeight   = 1680.0 // pounds
	simFuelDensity   = 6.0    // pounds per gallon
	simTankCapacity  = 56.0   // gallons
	simBurnPerHour   = 8.5    // gallons
	simCruiseKnots   = 110.0
	simCruiseAltFeet = 4500.0
	simStartLat      = 0.8296 // radians
	simStartLon      = 0.1498
	simHeading       = 1.5708
)

// seedSimulation stores the initial aircraft state in the peer.
func seedSimulation(peer *simpeer.Peer) {
	peer.Set("TITLE", simTitle)
	peer.Set("FUEL TANK CENTER CAPACITY", simTankCapacity)
	peer.Set("FUEL TOTAL CAPACITY", simTankCapacity)
	peer.Set("FUEL TANK CENTER QUANTITY", simTankCapacity)
	peer.Set("FUEL TANK CENTER LEVEL", 1.0)
	peer.Set("FUEL TOTAL QUANTITY", simTankCapacity)
	peer.Set("FUEL TOTAL QUANTITY WEIGHT", simTankCapacity*simFuelDensity)
	peer.Set("TOTAL WEIGHT", simEmptyWeight+simTankCapacity*simFuelDensity)
	peer.Set("PLANE LATITUDE", simStartLat)
	peer.Set("PLANE LONGITUDE", simStartLon)
	peer.Set("PLANE ALTITUDE", simCruiseAltFeet)
	peer.Set("PLANE ALT ABOVE GROUND", simCruiseAltFeet-650)
	peer.Set("PLANE HEADING DEGREES MAGNETIC", simHeading)
	peer.Set("PLANE HEADING DEGREES TRUE", simHeading)
	peer.Set("AIRSPEED INDICATED", simCruiseKnots)
	peer.Set("ELECTRICAL MASTER BATTERY", true)
}

// runSimulation advances the simulated flight once per interval: fuel
// burns, the aircraft moves along its heading and airspeed wobbles.
func runSimulation(ctx context.Context, peer *simpeer.Peer, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			step++
			hours := interval.Hours()

			fuel := floatValue(peer, "FUEL TANK CENTER QUANTITY")
			fuel = math.Max(0, fuel-simBurnPerHour*hours*60) // one simulated minute per tick
			peer.Set("FUEL TANK CENTER QUANTITY", fuel)
			peer.Set("FUEL TANK CENTER LEVEL", fuel/simTankCapacity)
			peer.Set("FUEL TOTAL QUANTITY", fuel)
			peer.Set("FUEL TOTAL QUANTITY WEIGHT", fuel*simFuelDensity)
			peer.Set("TOTAL WEIGHT", simEmptyWeight+fuel*simFuelDensity)

			// Nautical miles to radians of arc.
			heading := floatValue(peer, "PLANE HEADING DEGREES TRUE")
			dist := simCruiseKnots * hours * 60 / (60 * 180 / math.Pi)
			peer.Set("PLANE LATITUDE", floatValue(peer, "PLANE LATITUDE")+dist*math.Cos(heading))
			peer.Set("PLANE LONGITUDE", floatValue(peer, "PLANE LONGITUDE")+dist*math.Sin(heading))

			peer.Set("AIRSPEED INDICATED", simCruiseKnots+3*math.Sin(float64(step)/5))

			if logger != nil {
				logger.Debug("simulation step", "step", step, "fuel_gal", fuel)
			}
		}
	}
}

func floatValue(peer *simpeer.Peer, name string) float64 {
	v, _ := peer.Get(name)
	f, _ := v.(float64)
	return f
}
