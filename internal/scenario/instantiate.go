package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"scenario-seeder/internal/rng"
	"scenario-seeder/internal/sim"
)

// Metrics receives instantiation events. All methods must be cheap.
type Metrics interface {
	PersonInstantiated()
	BusRouteSeeded()
	TripScheduled()
	TripDropped(reason string)
	ParkedCarSeeded()
	ParkedCarSkipped()
	ParkingExhausted()
	RoadsSearched(n int)
}

type Options struct {
	// Defaults to log.Default().
	Logger  *log.Logger
	Metrics Metrics
}

type Report struct {
	People          int
	BusRoutesSeeded int
	TripsScheduled  int
	TripsDropped    int
	TripsFlushed    int
	Parking         ParkingReport
	Duration        time.Duration
}

// tripKey names the fork used for one trip of one person.
func tripKey(p sim.PersonID, trip int) uint64 {
	return uint64(uint32(p))<<32 | uint64(uint32(trip))
}

// Instantiate seeds eng with every person, their vehicles, initially parked
// cars and trips, then flushes the spawner.
//
// The base generator advances only by draws whose count is fixed by the
// demand itself (vehicle specs, walking speeds, the parked car shuffle).
// Anything that depends on the map runs on a fork, so map edits don't
// disturb the rest of the scenario.
func (s *Scenario) Instantiate(ctx context.Context, eng Engine, m RoadNetwork, base *rng.Rand, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if s.MapName != m.Name() {
		return nil, fmt.Errorf("%q is for %q, not %q: %w", s.Name, s.MapName, m.Name(), ErrMapMismatch)
	}
	start := time.Now()
	report := &Report{}
	logger.Printf("instantiating %s", s.Name)

	eng.SetName(s.Name)
	seeded, err := s.seedBuses(eng, m, opts.Metrics)
	if err != nil {
		return nil, err
	}
	report.BusRoutesSeeded = seeded

	var parked []parkedVehicle
	for _, p := range s.People {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		assignment, err := AssignVehicles(p, base)
		if err != nil {
			return nil, err
		}
		person, err := eng.NewPerson(p.ID, RandPedSpeed(base), assignment.Specs)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", p.ID, err)
		}
		if len(person.Vehicles) != len(assignment.Specs) {
			return nil, fmt.Errorf("engine gave %s %d vehicles, wanted %d: %w", p.ID, len(person.Vehicles), len(assignment.Specs), ErrInvariant)
		}
		report.People++
		if opts.Metrics != nil {
			opts.Metrics.PersonInstantiated()
		}
		for _, pc := range assignment.ParkedAt {
			parked = append(parked, parkedVehicle{vehicle: person.Vehicles[pc.Index], building: pc.Building})
		}

		for idx, t := range p.Trips {
			var vehicle *sim.CarID
			if v := assignment.PerTrip[idx]; v != NoVehicle {
				vehicle = &person.Vehicles[v].ID
			}
			// Picking a border lane can consume a map-dependent number of values.
			tmp := base.Fork(tripKey(p.ID, idx))
			spec, err := ToTripSpec(t.Trip, vehicle, tmp, m)
			if errors.Is(err, ErrUnresolvable) {
				logger.Printf("couldn't turn %s trip %d of %s into a trip: %v", t.Trip.kind(), idx, p.ID, err)
				report.TripsDropped++
				if opts.Metrics != nil {
					opts.Metrics.TripDropped("unresolvable")
				}
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%s trip %d: %w", p.ID, idx, err)
			}
			if err := eng.ScheduleTrip(p.ID, t.Depart, spec); err != nil {
				return nil, fmt.Errorf("schedule %s trip %d: %w", p.ID, idx, err)
			}
			report.TripsScheduled++
			if opts.Metrics != nil {
				opts.Metrics.TripScheduled()
			}
		}
	}

	report.Parking, err = seedParkedCars(parked, eng, m, base, logger, opts.Metrics)
	if err != nil {
		return nil, err
	}

	report.TripsFlushed, err = eng.FlushSpawner(ctx)
	if err != nil {
		return nil, fmt.Errorf("flush spawner: %w", err)
	}
	report.Duration = time.Since(start)
	logger.Printf("instantiated %s: %d people, %d trips scheduled, %d dropped, %d of %d parked cars seeded (%d skipped) in %s",
		s.Name, report.People, report.TripsScheduled, report.TripsDropped,
		report.Parking.Seeded, report.Parking.Requested, report.Parking.Skipped, report.Duration.Round(time.Millisecond))
	return report, nil
}

func (s *Scenario) seedBuses(eng Engine, m RoadNetwork, metrics Metrics) (int, error) {
	var only map[string]bool
	if s.OnlySeedBuses != nil {
		only = make(map[string]bool, len(s.OnlySeedBuses))
		for _, name := range s.OnlySeedBuses {
			only[name] = true
		}
	}
	n := 0
	for _, route := range m.BusRoutes() {
		if only != nil && !only[route.Name] {
			continue
		}
		if err := eng.SeedBusRoute(route); err != nil {
			return n, fmt.Errorf("seed bus route %s: %w", route.Name, err)
		}
		n++
		if metrics != nil {
			metrics.BusRouteSeeded()
		}
	}
	return n, nil
}
