package scenario

import (
	"fmt"
	"log"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/rng"
	"scenario-seeder/internal/sim"
)

type parkedVehicle struct {
	vehicle  sim.Vehicle
	building mapmodel.BuildingID
}

type ParkingReport struct {
	Requested int
	Seeded    int
	// Failed is 0 or 1: the first failure stops the batch.
	Failed int
	// Skipped counts cars never attempted after the failure.
	Skipped int
	// RoadsSearched by the failing search, if any.
	RoadsSearched int
}

// spotPools holds the free spots of each road. The allocator owns it for the
// duration of one batch.
type spotPools map[mapmodel.RoadID][]sim.ParkingSpot

func spotRoad(spot sim.ParkingSpot, m RoadNetwork) (mapmodel.RoadID, error) {
	switch spot.Kind {
	case sim.SpotOnstreet:
		if r, ok := m.LaneParent(spot.Lane); ok {
			return r, nil
		}
	case sim.SpotOffstreet:
		if sw, ok := m.BuildingSidewalk(spot.Building); ok {
			if r, ok := m.LaneParent(sw); ok {
				return r, nil
			}
		}
	}
	return 0, fmt.Errorf("%s is not on the map: %w", spot, ErrInvariant)
}

// buildSpotPools groups free spots by road and shuffles every road's pool on
// its own fork, so one road's supply never changes another road's order.
func buildSpotPools(free []sim.ParkingSpot, m RoadNetwork, base *rng.Rand) (spotPools, error) {
	pools := make(spotPools)
	for _, spot := range free {
		r, err := spotRoad(spot, m)
		if err != nil {
			return nil, err
		}
		pools[r] = append(pools[r], spot)
	}
	for _, r := range m.AllRoads() {
		tmp := base.Fork(uint64(r))
		if spots := pools[r]; len(spots) > 0 {
			tmp.Shuffle(len(spots), func(i, j int) { spots[i], spots[j] = spots[j], spots[i] })
		}
	}
	return pools, nil
}

// seedParkedCars finds a spot for every car near its building. The list is
// shuffled on base directly; its length never depends on the map. Once one
// car can't be placed, the rest of the batch is only counted.
func seedParkedCars(cars []parkedVehicle, eng Engine, m RoadNetwork, base *rng.Rand, logger *log.Logger, metrics Metrics) (ParkingReport, error) {
	report := ParkingReport{Requested: len(cars)}
	pools, err := buildSpotPools(eng.FreeParkingSpots(), m, base)
	if err != nil {
		return report, err
	}
	base.Shuffle(len(cars), func(i, j int) { cars[i], cars[j] = cars[j], cars[i] })

	ok := true
	for _, c := range cars {
		if !ok {
			report.Skipped++
			if metrics != nil {
				metrics.ParkedCarSkipped()
			}
			continue
		}
		spot, searched, found, err := findSpotNearBuilding(c.building, pools, m)
		if err != nil {
			return report, err
		}
		if metrics != nil {
			metrics.RoadsSearched(searched)
		}
		if !found {
			logger.Printf("not enough room to seed parked cars: searched %d of %d roads near %s", searched, len(m.AllRoads()), c.building)
			report.Failed++
			report.RoadsSearched = searched
			if metrics != nil {
				metrics.ParkingExhausted()
			}
			ok = false
			continue
		}
		if err := eng.SeedParkedCar(c.vehicle, spot); err != nil {
			return report, fmt.Errorf("seed %s at %s: %w", c.vehicle.ID, spot, err)
		}
		report.Seeded++
		if metrics != nil {
			metrics.ParkedCarSeeded()
		}
	}
	return report, nil
}

// findSpotNearBuilding takes a spot on the building's road if one is free,
// otherwise breadth-first searches outward over road adjacency until a road
// with a free spot turns up. Ties at the same depth go to whichever road the
// network enumerates first. It reports how many roads were visited.
func findSpotNearBuilding(b mapmodel.BuildingID, pools spotPools, m RoadNetwork) (sim.ParkingSpot, int, bool, error) {
	start, ok := m.BuildingToRoad(b)
	if !ok {
		return sim.ParkingSpot{}, 0, false, fmt.Errorf("parked car at unknown %s: %w", b, ErrInvariant)
	}
	queue := []mapmodel.RoadID{start}
	visited := map[mapmodel.RoadID]bool{start: true}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		if spots := pools[r]; len(spots) > 0 {
			spot := spots[len(spots)-1]
			pools[r] = spots[:len(spots)-1]
			return spot, len(visited), true, nil
		}
		for _, next := range m.NextRoads(r) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return sim.ParkingSpot{}, len(visited), false, nil
}
