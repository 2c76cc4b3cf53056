package scenario

import (
	"fmt"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/rng"
	"scenario-seeder/internal/sim"
)

// NoVehicle marks a trip that uses no vehicle.
const NoVehicle = -1

type ParkedCar struct {
	Index    int
	Building mapmodel.BuildingID
}

// VehicleAssignment is what one person owns and uses. Indices refer to Specs.
type VehicleAssignment struct {
	Specs []sim.VehicleSpec
	// Cars that must already be parked when the simulation starts.
	ParkedAt []ParkedCar
	// Vehicle index for each trip, or NoVehicle.
	PerTrip []int
}

// carLocation binds a car to a building, or to off-map when parked is false.
type carLocation struct {
	idx      int
	parked   bool
	building mapmodel.BuildingID
}

// AssignVehicles walks a person's trips in order and works out the vehicles
// the chain implies. A person has at most one bike, which is never tracked.
// Cars are tracked as off-map or parked at a building. Draws from r depend
// only on the trip list.
func AssignVehicles(p PersonSpec, r *rng.Rand) (*VehicleAssignment, error) {
	a := &VehicleAssignment{PerTrip: make([]int, 0, len(p.Trips))}
	bikeIdx := NoVehicle
	var cars []carLocation

	useBike := func() int {
		if bikeIdx == NoVehicle {
			bikeIdx = len(a.Specs)
			a.Specs = append(a.Specs, RandBike(r))
		}
		return bikeIdx
	}
	newCar := func() int {
		idx := len(a.Specs)
		a.Specs = append(a.Specs, RandCar(r))
		return idx
	}
	// Where does this car wind up?
	rebind := func(idx int, goal sim.DrivingGoal) error {
		kept := cars[:0]
		for _, c := range cars {
			if c.idx != idx {
				kept = append(kept, c)
			}
		}
		cars = kept
		switch goal.Kind {
		case sim.GoalParkNear:
			cars = append(cars, carLocation{idx: idx, parked: true, building: goal.Building})
		case sim.GoalBorder:
			cars = append(cars, carLocation{idx: idx})
		default:
			return fmt.Errorf("%s: driving goal kind %q: %w", p.ID, goal.Kind, ErrInvariant)
		}
		return nil
	}
	driveFromOffMap := func(goal sim.DrivingGoal) (int, error) {
		idx := NoVehicle
		for _, c := range cars {
			if !c.parked {
				idx = c.idx
				break
			}
		}
		if idx == NoVehicle {
			idx = newCar()
		}
		return idx, rebind(idx, goal)
	}

	for _, trip := range p.Trips {
		use := NoVehicle
		var err error
		switch t := trip.Trip.(type) {
		case VehicleAppearing:
			if t.IsBike {
				use = useBike()
			} else {
				use, err = driveFromOffMap(t.Goal)
			}
		case FromBorder:
			if t.IsBike {
				use = useBike()
			} else {
				use, err = driveFromOffMap(t.Goal)
			}
		case UsingParkedCar:
			// Is there already a car parked here?
			use = NoVehicle
			for _, c := range cars {
				if c.parked && c.building == t.Start {
					use = c.idx
					break
				}
			}
			if use == NoVehicle {
				use = newCar()
				a.ParkedAt = append(a.ParkedAt, ParkedCar{Index: use, Building: t.Start})
			}
			err = rebind(use, t.Goal)
		case UsingBike:
			use = useBike()
		case JustWalking, UsingTransit:
		default:
			err = fmt.Errorf("%s: unknown trip variant %T: %w", p.ID, trip.Trip, ErrInvariant)
		}
		if err != nil {
			return nil, err
		}
		a.PerTrip = append(a.PerTrip, use)
	}
	return a, nil
}

func RandCar(r *rng.Rand) sim.VehicleSpec {
	return sim.VehicleSpec{
		Type:   sim.VehicleCar,
		Length: r.Range(sim.MinCarLength, sim.MaxCarLength),
	}
}

func RandBike(r *rng.Rand) sim.VehicleSpec {
	speed := r.Range(sim.MinBikeSpeed, sim.MaxBikeSpeed)
	return sim.VehicleSpec{
		Type:     sim.VehicleBike,
		Length:   sim.BikeLength,
		MaxSpeed: &speed,
	}
}

func RandPedSpeed(r *rng.Rand) float64 {
	return r.Range(sim.MinPedSpeed, sim.MaxPedSpeed)
}
