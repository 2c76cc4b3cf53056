package scenario

import (
	"fmt"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/sim"
)

// SpawnTrip is an abstract trip, independent of concrete vehicles.
type SpawnTrip interface {
	kind() string
}

// VehicleAppearing materializes a vehicle mid-map. Only meant for
// interactive and debug trips.
type VehicleAppearing struct {
	Start  mapmodel.Position `json:"start"`
	Goal   sim.DrivingGoal   `json:"goal"`
	IsBike bool              `json:"is_bike"`
}

// FromBorder enters the map at a border intersection. Bikes starting at a
// border use this; UsingBike means walking to a bike first.
type FromBorder struct {
	Intersection mapmodel.IntersectionID `json:"intersection"`
	Goal         sim.DrivingGoal         `json:"goal"`
	IsBike       bool                    `json:"is_bike"`
}

type UsingParkedCar struct {
	Start mapmodel.BuildingID `json:"start"`
	Goal  sim.DrivingGoal     `json:"goal"`
}

type UsingBike struct {
	Start sim.SidewalkSpot `json:"start"`
	Goal  sim.DrivingGoal  `json:"goal"`
}

type JustWalking struct {
	Start sim.SidewalkSpot `json:"start"`
	Goal  sim.SidewalkSpot `json:"goal"`
}

type UsingTransit struct {
	Start sim.SidewalkSpot    `json:"start"`
	Goal  sim.SidewalkSpot    `json:"goal"`
	Route mapmodel.BusRouteID `json:"route"`
	Stop1 mapmodel.BusStopID  `json:"stop1"`
	Stop2 mapmodel.BusStopID  `json:"stop2"`
}

const (
	kindVehicleAppearing = "vehicle_appearing"
	kindFromBorder       = "from_border"
	kindUsingParkedCar   = "using_parked_car"
	kindUsingBike        = "using_bike"
	kindJustWalking      = "just_walking"
	kindUsingTransit     = "using_transit"
)

func (VehicleAppearing) kind() string { return kindVehicleAppearing }
func (FromBorder) kind() string       { return kindFromBorder }
func (UsingParkedCar) kind() string   { return kindUsingParkedCar }
func (UsingBike) kind() string        { return kindUsingBike }
func (JustWalking) kind() string      { return kindJustWalking }
func (UsingTransit) kind() string     { return kindUsingTransit }

// TripStart is where the trip begins.
func TripStart(t SpawnTrip, m RoadNetwork) (sim.TripEndpoint, error) {
	switch t := t.(type) {
	case VehicleAppearing:
		i, ok := m.LaneSrc(t.Start.Lane)
		if !ok {
			return sim.TripEndpoint{}, fmt.Errorf("vehicle appears on unknown %s: %w", t.Start.Lane, ErrInvariant)
		}
		return sim.AtBorder(i), nil
	case FromBorder:
		return sim.AtBorder(t.Intersection), nil
	case UsingParkedCar:
		return sim.AtBuilding(t.Start), nil
	case UsingBike:
		return spotEndpoint(t.Start)
	case JustWalking:
		return spotEndpoint(t.Start)
	case UsingTransit:
		return spotEndpoint(t.Start)
	}
	return sim.TripEndpoint{}, fmt.Errorf("unknown trip variant %T: %w", t, ErrInvariant)
}

// TripEnd is where the trip finishes.
func TripEnd(t SpawnTrip) (sim.TripEndpoint, error) {
	switch t := t.(type) {
	case VehicleAppearing:
		return goalEndpoint(t.Goal)
	case FromBorder:
		return goalEndpoint(t.Goal)
	case UsingParkedCar:
		return goalEndpoint(t.Goal)
	case UsingBike:
		return goalEndpoint(t.Goal)
	case JustWalking:
		return spotEndpoint(t.Goal)
	case UsingTransit:
		return spotEndpoint(t.Goal)
	}
	return sim.TripEndpoint{}, fmt.Errorf("unknown trip variant %T: %w", t, ErrInvariant)
}

func goalEndpoint(g sim.DrivingGoal) (sim.TripEndpoint, error) {
	switch g.Kind {
	case sim.GoalParkNear:
		return sim.AtBuilding(g.Building), nil
	case sim.GoalBorder:
		return sim.AtBorder(g.Intersection), nil
	}
	return sim.TripEndpoint{}, fmt.Errorf("driving goal kind %q: %w", g.Kind, ErrInvariant)
}

// Trips only start or end at buildings and borders; other sidewalk
// connections are intermediate.
func spotEndpoint(s sim.SidewalkSpot) (sim.TripEndpoint, error) {
	switch s.Connection.Kind {
	case sim.POIBuilding:
		return sim.AtBuilding(s.Connection.Building), nil
	case sim.POIBorder:
		return sim.AtBorder(s.Connection.Intersection), nil
	}
	return sim.TripEndpoint{}, fmt.Errorf("trip endpoint at %q: %w", s.Connection.Kind, ErrInvariant)
}
