package scenario

import (
	"fmt"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/rng"
	"scenario-seeder/internal/sim"
)

// ToTripSpec resolves an abstract trip using the vehicle assigned to it. r
// must be a fork used for this trip only: how many values the border lane
// choice consumes depends on the map.
func ToTripSpec(t SpawnTrip, vehicle *sim.CarID, r *rng.Rand, m RoadNetwork) (sim.TripSpec, error) {
	needVehicle := func() (sim.CarID, error) {
		if vehicle == nil {
			return sim.CarID{}, fmt.Errorf("%s trip has no vehicle: %w", t.kind(), ErrInvariant)
		}
		return *vehicle, nil
	}

	switch t := t.(type) {
	case VehicleAppearing:
		v, err := needVehicle()
		if err != nil {
			return nil, err
		}
		return sim.VehicleAppearing{StartPos: t.Start, Goal: t.Goal, UseVehicle: v, RetryIfNoRoom: true}, nil
	case FromBorder:
		v, err := needVehicle()
		if err != nil {
			return nil, err
		}
		if !m.IsBorder(t.Intersection) {
			return nil, fmt.Errorf("%s is not a border: %w", t.Intersection, ErrUnresolvable)
		}
		constraints := mapmodel.ConstraintCar
		if t.IsBike {
			constraints = mapmodel.ConstraintBike
		}
		lanes := m.OutgoingLanes(t.Intersection, constraints)
		if len(lanes) == 0 {
			return nil, fmt.Errorf("no %s lanes leave %s: %w", constraints, t.Intersection, ErrUnresolvable)
		}
		l := lanes[r.IntN(len(lanes))]
		length, ok := m.LaneLength(l)
		if !ok {
			return nil, fmt.Errorf("%s lists unknown %s: %w", t.Intersection, l, ErrInvariant)
		}
		pos, ok := sim.SpawnVehicleAt(mapmodel.Position{Lane: l}, t.IsBike, length)
		if !ok {
			return nil, fmt.Errorf("%s is too short to spawn on: %w", l, ErrUnresolvable)
		}
		return sim.VehicleAppearing{StartPos: pos, Goal: t.Goal, UseVehicle: v, RetryIfNoRoom: true}, nil
	case UsingParkedCar:
		v, err := needVehicle()
		if err != nil {
			return nil, err
		}
		return sim.UsingParkedCar{StartBldg: t.Start, Goal: t.Goal, Car: v}, nil
	case UsingBike:
		v, err := needVehicle()
		if err != nil {
			return nil, err
		}
		return sim.UsingBike{Bike: v, Start: t.Start, Goal: t.Goal}, nil
	case JustWalking:
		return sim.JustWalking{Start: t.Start, Goal: t.Goal}, nil
	case UsingTransit:
		return sim.UsingTransit{Start: t.Start, Goal: t.Goal, Route: t.Route, Stop1: t.Stop1, Stop2: t.Stop2}, nil
	}
	return nil, fmt.Errorf("unknown trip variant %T: %w", t, ErrInvariant)
}
