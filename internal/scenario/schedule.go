package scenario

import (
	"fmt"
	"log"
	"time"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/rng"
	"scenario-seeder/internal/sim"
)

const day = 24 * time.Hour

// RepeatDays blindly repeats every person's trips for the given number of
// days. With avoidInbound, cars appearing mid-map only show up on the first
// day; repeating them leaks cars into parking that nothing ever removes.
func (s *Scenario) RepeatDays(days int, avoidInbound bool) error {
	if days < 1 {
		return fmt.Errorf("repeat for %d days: need at least 1", days)
	}
	s.Name = fmt.Sprintf("%s repeated for %d days", s.Name, days)
	for i := range s.People {
		person := &s.People[i]
		trips := make([]IndividTrip, 0, len(person.Trips)*days)
		for d := 0; d < days; d++ {
			offset := time.Duration(d) * day
			for _, t := range person.Trips {
				if d > 0 && avoidInbound && isInbound(t.Trip) {
					continue
				}
				trips = append(trips, IndividTrip{Depart: t.Depart + offset, Trip: t.Trip})
			}
		}
		person.Trips = trips
	}
	return nil
}

func isInbound(t SpawnTrip) bool {
	va, ok := t.(VehicleAppearing)
	return ok && !va.IsBike
}

// RemoveWeirdSchedules drops everyone whose trips don't chain: each trip
// must start where the previous one ended. Once off-map, a person may come
// back through any border. Survivors are renumbered from zero.
func (s *Scenario) RemoveWeirdSchedules(m RoadNetwork, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.Default()
	}
	// s is left untouched on error.
	orig := len(s.People)
	kept := make([]PersonSpec, 0, orig)
	for _, person := range s.People {
		ok, err := continuous(person, m, logger)
		if err != nil {
			return 0, err
		}
		if ok {
			kept = append(kept, person)
		}
	}
	for idx := range kept {
		kept[idx].ID = sim.PersonID(idx)
	}
	s.People = kept
	dropped := orig - len(kept)
	logger.Printf("%d of %d people have nonsense schedules", dropped, orig)
	return dropped, nil
}

func continuous(p PersonSpec, m RoadNetwork, logger *log.Logger) (bool, error) {
	for i := 0; i+1 < len(p.Trips); i++ {
		end, err := TripEnd(p.Trips[i].Trip)
		if err != nil {
			return false, fmt.Errorf("%s trip %d: %w", p.ID, i, err)
		}
		next, err := TripStart(p.Trips[i+1].Trip, m)
		if err != nil {
			return false, fmt.Errorf("%s trip %d: %w", p.ID, i+1, err)
		}
		if !sameLocation(end, next) {
			logger.Printf("%s (%s) warps between trips %d and %d, from %s to %s", p.ID, p.OrigID, i, i+1, end, next)
			return false, nil
		}
	}
	return true, nil
}

// Two endpoints match if they are the same building or both borders.
func sameLocation(a, b sim.TripEndpoint) bool {
	if a.Kind == sim.EndpointBorder || b.Kind == sim.EndpointBorder {
		return a.Kind == b.Kind
	}
	return a.Building == b.Building
}

// CountParkedCarsPerBuilding tallies the cars that must start parked at each
// building. Vehicle lengths don't matter here, so a throwaway generator is
// used.
func (s *Scenario) CountParkedCarsPerBuilding() (map[mapmodel.BuildingID]int, error) {
	counts := make(map[mapmodel.BuildingID]int)
	r := rng.New(0)
	for _, p := range s.People {
		a, err := AssignVehicles(p, r)
		if err != nil {
			return nil, err
		}
		for _, pc := range a.ParkedAt {
			counts[pc.Building]++
		}
	}
	return counts, nil
}
