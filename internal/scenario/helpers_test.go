package scenario

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/publisher"
	"scenario-seeder/internal/sim"
)

// testNetwork is a line of roads between two borders, plus a footpath border:
//
//	(4) --road 3-- (0) --road 0-- (1) --road 1-- (2) --road 2-- (3)
//
// Intersections 0, 3 and 4 are borders. Road 1 has one on-street spot, road
// 2 has two. Buildings 100, 101, 102 sit on roads 0, 1, 2.
func testNetwork(t *testing.T, extraLanes ...mapmodel.Lane) *mapmodel.Network {
	t.Helper()
	is := []mapmodel.Intersection{
		{ID: 0, Border: true}, {ID: 1}, {ID: 2}, {ID: 3, Border: true}, {ID: 4, Border: true},
	}
	roads := []mapmodel.Road{
		{ID: 0, Src: 0, Dst: 1}, {ID: 1, Src: 1, Dst: 2}, {ID: 2, Src: 2, Dst: 3}, {ID: 3, Src: 4, Dst: 0},
	}
	lanes := []mapmodel.Lane{
		{ID: 10, Road: 0, Src: 0, Dst: 1, Type: mapmodel.LaneDriving, Length: 100},
		{ID: 11, Road: 0, Src: 0, Dst: 1, Type: mapmodel.LaneSidewalk, Length: 100},
		{ID: 12, Road: 0, Src: 0, Dst: 1, Type: mapmodel.LaneBiking, Length: 100},
		{ID: 20, Road: 1, Src: 1, Dst: 2, Type: mapmodel.LaneDriving, Length: 100},
		{ID: 21, Road: 1, Src: 1, Dst: 2, Type: mapmodel.LaneParking, Length: 8},
		{ID: 22, Road: 1, Src: 1, Dst: 2, Type: mapmodel.LaneSidewalk, Length: 100},
		{ID: 30, Road: 2, Src: 2, Dst: 3, Type: mapmodel.LaneDriving, Length: 100},
		{ID: 31, Road: 2, Src: 2, Dst: 3, Type: mapmodel.LaneParking, Length: 16},
		{ID: 32, Road: 2, Src: 2, Dst: 3, Type: mapmodel.LaneSidewalk, Length: 100},
		{ID: 33, Road: 2, Src: 3, Dst: 2, Type: mapmodel.LaneDriving, Length: 100},
		{ID: 40, Road: 3, Src: 4, Dst: 0, Type: mapmodel.LaneSidewalk, Length: 50},
	}
	lanes = append(lanes, extraLanes...)
	bldgs := []mapmodel.Building{
		{ID: 100, Sidewalk: 11}, {ID: 101, Sidewalk: 22}, {ID: 102, Sidewalk: 32},
	}
	routes := []mapmodel.BusRoute{
		{ID: 1, Name: "44", Stops: []mapmodel.BusStopID{1, 2}},
		{ID: 2, Name: "48", Stops: []mapmodel.BusStopID{3}},
	}
	n, err := mapmodel.NewNetwork("line", is, roads, lanes, bldgs, routes)
	require.NoError(t, err)
	return n
}

func bldgSpot(b mapmodel.BuildingID) sim.SidewalkSpot {
	return sim.BuildingSpot(b, mapmodel.Position{})
}

func borderSpot(i mapmodel.IntersectionID) sim.SidewalkSpot {
	return sim.BorderSpot(i, mapmodel.Position{})
}

func trip(hour int, t SpawnTrip) IndividTrip {
	return IndividTrip{Depart: time.Duration(hour) * time.Hour, Trip: t}
}

func person(id int, trips ...IndividTrip) PersonSpec {
	return PersonSpec{ID: sim.PersonID(id), OrigID: "test", Trips: trips}
}

func bufferLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func countLines(buf *bytes.Buffer, substr string) int {
	n := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	people []publisher.PersonMessage
	parked []publisher.ParkedCarMessage
	buses  []publisher.BusRouteMessage
	trips  []publisher.TripMessage
}

func (p *recordingPublisher) PublishPerson(m publisher.PersonMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.people = append(p.people, m)
	return nil
}

func (p *recordingPublisher) PublishParkedCar(m publisher.ParkedCarMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parked = append(p.parked, m)
	return nil
}

func (p *recordingPublisher) PublishBusRoute(m publisher.BusRouteMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buses = append(p.buses, m)
	return nil
}

func (p *recordingPublisher) PublishTrip(m publisher.TripMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trips = append(p.trips, m)
	return nil
}

type countingMetrics struct {
	people, buses, scheduled, seeded, skipped, exhausted int
	dropped                                              map[string]int
	searched                                             []int
}

func (c *countingMetrics) PersonInstantiated() { c.people++ }
func (c *countingMetrics) BusRouteSeeded()     { c.buses++ }
func (c *countingMetrics) TripScheduled()      { c.scheduled++ }
func (c *countingMetrics) TripDropped(reason string) {
	if c.dropped == nil {
		c.dropped = map[string]int{}
	}
	c.dropped[reason]++
}
func (c *countingMetrics) ParkedCarSeeded()    { c.seeded++ }
func (c *countingMetrics) ParkedCarSkipped()   { c.skipped++ }
func (c *countingMetrics) ParkingExhausted()   { c.exhausted++ }
func (c *countingMetrics) RoadsSearched(n int) { c.searched = append(c.searched, n) }
