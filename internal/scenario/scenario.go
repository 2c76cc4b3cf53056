// Package scenario turns a travel demand description into concrete engine
// state: vehicles per person, initial parking, and resolved trip specs.
package scenario

import (
	"context"
	"errors"
	"time"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/sim"
)

var (
	// ErrInvariant marks input that cannot happen for well-formed demand.
	// It is never absorbed.
	ErrInvariant = errors.New("scenario invariant violated")
	// ErrUnresolvable marks a single trip that cannot be turned into a spec
	// on this map. The trip is dropped.
	ErrUnresolvable = errors.New("trip cannot be resolved")
	ErrMapMismatch  = errors.New("scenario is for a different map")
)

// Scenario describes how to start a simulation.
type Scenario struct {
	Name    string       `json:"scenario_name"`
	MapName string       `json:"map_name"`
	People  []PersonSpec `json:"people"`
	// nil seeds every bus route. Otherwise only routes named here.
	OnlySeedBuses []string `json:"only_seed_buses"`
}

type PersonSpec struct {
	ID sim.PersonID `json:"id"`
	// Only for debugging.
	OrigID string        `json:"orig_id"`
	Trips  []IndividTrip `json:"trips"`
}

// IndividTrip departs at Depart, measured from midnight of the first day.
type IndividTrip struct {
	Depart time.Duration
	Trip   SpawnTrip
}

func Empty(mapName, name string) *Scenario {
	return &Scenario{
		Name:          name,
		MapName:       mapName,
		OnlySeedBuses: []string{},
	}
}

// RoadNetwork is the map as seen by instantiation. Enumerations must be in
// a stable order.
type RoadNetwork interface {
	Name() string
	AllRoads() []mapmodel.RoadID
	NextRoads(r mapmodel.RoadID) []mapmodel.RoadID
	BuildingToRoad(b mapmodel.BuildingID) (mapmodel.RoadID, bool)
	BuildingSidewalk(b mapmodel.BuildingID) (mapmodel.LaneID, bool)
	LaneParent(l mapmodel.LaneID) (mapmodel.RoadID, bool)
	LaneSrc(l mapmodel.LaneID) (mapmodel.IntersectionID, bool)
	LaneLength(l mapmodel.LaneID) (float64, bool)
	IsBorder(i mapmodel.IntersectionID) bool
	OutgoingLanes(i mapmodel.IntersectionID, c mapmodel.PathConstraints) []mapmodel.LaneID
	BusRoutes() []mapmodel.BusRoute
}

// Engine is the simulation being seeded.
type Engine interface {
	SetName(name string)
	SeedBusRoute(route mapmodel.BusRoute) error
	NewPerson(id sim.PersonID, pedSpeed float64, specs []sim.VehicleSpec) (*sim.Person, error)
	FreeParkingSpots() []sim.ParkingSpot
	SeedParkedCar(v sim.Vehicle, spot sim.ParkingSpot) error
	ScheduleTrip(person sim.PersonID, depart time.Duration, spec sim.TripSpec) error
	FlushSpawner(ctx context.Context) (int, error)
}
