package sim

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenario-seeder/internal/mapmodel"
	mmetrics "scenario-seeder/internal/metrics"
	"scenario-seeder/internal/publisher"
)

type fakeMap struct {
	lanes []mapmodel.Lane
	bldgs []mapmodel.Building
}

func (f fakeMap) Lanes() []mapmodel.Lane         { return f.lanes }
func (f fakeMap) Buildings() []mapmodel.Building { return f.bldgs }

type sink struct {
	people []publisher.PersonMessage
	parked []publisher.ParkedCarMessage
	buses  []publisher.BusRouteMessage
	trips  []publisher.TripMessage
	fail   error
}

func (s *sink) PublishPerson(m publisher.PersonMessage) error {
	s.people = append(s.people, m)
	return nil
}

func (s *sink) PublishParkedCar(m publisher.ParkedCarMessage) error {
	s.parked = append(s.parked, m)
	return nil
}

func (s *sink) PublishBusRoute(m publisher.BusRouteMessage) error {
	s.buses = append(s.buses, m)
	return nil
}

func (s *sink) PublishTrip(m publisher.TripMessage) error {
	if s.fail != nil {
		return s.fail
	}
	s.trips = append(s.trips, m)
	return nil
}

func testMap() fakeMap {
	return fakeMap{
		lanes: []mapmodel.Lane{
			{ID: 1, Type: mapmodel.LaneDriving, Length: 100},
			{ID: 2, Type: mapmodel.LaneParking, Length: 20},
			{ID: 3, Type: mapmodel.LaneParking, Length: 7.9},
		},
		bldgs: []mapmodel.Building{{ID: 10}, {ID: 11, Parking: 2}},
	}
}

func car() VehicleSpec { return VehicleSpec{Type: VehicleCar, Length: 5} }

func TestManagerParkingInventory(t *testing.T) {
	m := NewManager(testMap(), &sink{}, nil, nil)
	assert.Equal(t, []ParkingSpot{
		Onstreet(2, 0), Onstreet(2, 1), Offstreet(11, 0), Offstreet(11, 1),
	}, m.FreeParkingSpots())
}

func TestManagerNewPerson(t *testing.T) {
	m := NewManager(testMap(), &sink{}, nil, nil)
	bike := VehicleSpec{Type: VehicleBike, Length: BikeLength}

	a, err := m.NewPerson(0, 1.3, []VehicleSpec{car(), bike})
	require.NoError(t, err)
	b, err := m.NewPerson(1, 1.4, []VehicleSpec{car()})
	require.NoError(t, err)

	assert.Equal(t, CarID{ID: 0, Type: VehicleCar}, a.Vehicles[0].ID)
	assert.Equal(t, CarID{ID: 1, Type: VehicleBike}, a.Vehicles[1].ID)
	assert.Equal(t, CarID{ID: 2, Type: VehicleCar}, b.Vehicles[0].ID)
	assert.Equal(t, PersonID(1), b.Vehicles[0].Owner)

	_, err = m.NewPerson(0, 1.3, nil)
	require.ErrorIs(t, err, ErrDuplicatePerson)

	// Callers get a copy.
	a.Vehicles[0].Length = 99
	got, ok := m.Person(0)
	require.True(t, ok)
	assert.Equal(t, 5.0, got.Vehicles[0].Length)
}

func TestManagerSeedParkedCar(t *testing.T) {
	m := NewManager(testMap(), &sink{}, nil, nil)
	p, err := m.NewPerson(0, 1.3, []VehicleSpec{car(), car(), {Type: VehicleBike, Length: BikeLength}})
	require.NoError(t, err)
	c0, c1, bike := p.Vehicles[0], p.Vehicles[1], p.Vehicles[2]

	require.NoError(t, m.SeedParkedCar(c0, Onstreet(2, 1)))
	at, ok := m.ParkedAt(c0.ID)
	require.True(t, ok)
	assert.Equal(t, Onstreet(2, 1), at)
	assert.NotContains(t, m.FreeParkingSpots(), Onstreet(2, 1))

	tests := []struct {
		name string
		v    Vehicle
		spot ParkingSpot
		want error
	}{
		{"taken", c1, Onstreet(2, 1), ErrSpotTaken},
		{"unknown spot", c1, Onstreet(3, 0), ErrUnknownSpot},
		{"bike", bike, Onstreet(2, 0), ErrUnknownVehicle},
		{"stranger", Vehicle{ID: CarID{ID: 40, Type: VehicleCar}}, Onstreet(2, 0), ErrUnknownVehicle},
		{"twice", c0, Offstreet(11, 0), ErrAlreadyParked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, m.SeedParkedCar(tt.v, tt.spot), tt.want)
		})
	}
}

func TestManagerScheduleTrip(t *testing.T) {
	m := NewManager(testMap(), &sink{}, nil, nil)
	a, err := m.NewPerson(0, 1.3, []VehicleSpec{car()})
	require.NoError(t, err)
	_, err = m.NewPerson(1, 1.3, nil)
	require.NoError(t, err)

	drive := UsingParkedCar{StartBldg: 10, Goal: ParkNear(11), Car: a.Vehicles[0].ID}
	require.NoError(t, m.ScheduleTrip(0, time.Hour, drive))
	require.ErrorIs(t, m.ScheduleTrip(1, time.Hour, drive), ErrNotOwner)
	require.ErrorIs(t, m.ScheduleTrip(7, time.Hour, JustWalking{}), ErrUnknownPerson)

	drive.Car = CarID{ID: 9, Type: VehicleCar}
	require.ErrorIs(t, m.ScheduleTrip(0, time.Hour, drive), ErrUnknownVehicle)
}

func TestManagerFlushSpawner(t *testing.T) {
	out := &sink{}
	metrics := mmetrics.NewCollector(1)
	m := NewManager(testMap(), out, metrics, nil)
	m.SetName("weekday")
	require.NoError(t, m.SeedBusRoute(mapmodel.BusRoute{ID: 1, Name: "44", Stops: []mapmodel.BusStopID{5, 6}}))
	require.Error(t, m.SeedBusRoute(mapmodel.BusRoute{ID: 1, Name: "44"}))

	p, err := m.NewPerson(3, 1.3, []VehicleSpec{car()})
	require.NoError(t, err)
	require.NoError(t, m.SeedParkedCar(p.Vehicles[0], Offstreet(11, 1)))

	walk := JustWalking{Start: BuildingSpot(10, mapmodel.Position{}), Goal: BuildingSpot(11, mapmodel.Position{})}
	require.NoError(t, m.ScheduleTrip(3, 9*time.Hour, walk))
	require.NoError(t, m.ScheduleTrip(3, 7*time.Hour, UsingParkedCar{StartBldg: 11, Goal: ParkNear(10), Car: p.Vehicles[0].ID}))
	require.NoError(t, m.ScheduleTrip(3, 9*time.Hour, UsingTransit{Start: walk.Goal, Goal: walk.Start, Route: 1, Stop1: 5, Stop2: 6}))

	n, err := m.FlushSpawner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, out.people, 1)
	assert.Equal(t, "weekday", out.people[0].Scenario)
	assert.Equal(t, []publisher.VehicleMessage{{ID: "car #0", Type: "car", Length: 5}}, out.people[0].Vehicles)
	assert.Equal(t, []publisher.BusRouteMessage{{Scenario: "weekday", RouteID: 1, Name: "44", Stops: []int{5, 6}}}, out.buses)
	require.Len(t, out.parked, 1)
	assert.Equal(t, Offstreet(11, 1), out.parked[0].Spot)

	var modes []string
	var seqs []int
	for _, tr := range out.trips {
		modes = append(modes, tr.Mode)
		seqs = append(seqs, tr.Seq)
	}
	assert.Equal(t, []string{"using_parked_car", "just_walking", "using_transit"}, modes)
	assert.Equal(t, []int{1, 0, 2}, seqs, "ties keep scheduling order")

	// A second flush only sends what is new.
	n, err = m.FlushSpawner(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, out.people, 1)
	assert.Len(t, out.trips, 3)
}

func TestManagerLogsToGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(testMap(), &sink{}, nil, log.New(&buf, "", 0))
	require.NoError(t, m.SeedBusRoute(mapmodel.BusRoute{ID: 1, Name: "44", Stops: []mapmodel.BusStopID{5, 6}}))
	_, err := m.NewPerson(0, 1.3, nil)
	require.NoError(t, err)
	require.NoError(t, m.ScheduleTrip(0, time.Hour, JustWalking{}))
	_, err = m.FlushSpawner(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "seeded bus route 44 with 2 stops")
	assert.Contains(t, buf.String(), "flushed 1 trips for 1 people")
}

func TestManagerFlushKeepsUnsentTrips(t *testing.T) {
	out := &sink{fail: errors.New("broker down")}
	m := NewManager(testMap(), out, nil, nil)
	_, err := m.NewPerson(0, 1.3, nil)
	require.NoError(t, err)
	require.NoError(t, m.ScheduleTrip(0, time.Hour, JustWalking{}))

	_, err = m.FlushSpawner(context.Background())
	require.Error(t, err)

	out.fail = nil
	n, err := m.FlushSpawner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestManagerFlushCancelled(t *testing.T) {
	m := NewManager(testMap(), &sink{}, nil, nil)
	_, err := m.NewPerson(0, 1.3, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.FlushSpawner(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSpawnVehicleAt(t *testing.T) {
	pos, ok := SpawnVehicleAt(mapmodel.Position{Lane: 1}, false, 100)
	require.True(t, ok)
	assert.Equal(t, MaxCarLength, pos.DistAlong)

	pos, ok = SpawnVehicleAt(mapmodel.Position{Lane: 1, DistAlong: 2}, true, 100)
	require.True(t, ok)
	assert.Equal(t, 2+BikeLength, pos.DistAlong)

	_, ok = SpawnVehicleAt(mapmodel.Position{Lane: 1}, false, MaxCarLength)
	assert.False(t, ok)
}
