package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/rng"
	"scenario-seeder/internal/sim"
)

func TestAssignVehiclesParkedCarAtFirstBuilding(t *testing.T) {
	p := person(0,
		trip(7, JustWalking{Start: bldgSpot(100), Goal: bldgSpot(101)}),
		trip(8, UsingParkedCar{Start: 101, Goal: sim.ToBorder(3, 30)}),
	)
	a, err := AssignVehicles(p, rng.New(1))
	require.NoError(t, err)

	require.Len(t, a.Specs, 1)
	assert.Equal(t, sim.VehicleCar, a.Specs[0].Type)
	assert.Equal(t, []ParkedCar{{Index: 0, Building: 101}}, a.ParkedAt)
	assert.Equal(t, []int{NoVehicle, 0}, a.PerTrip)
}

func TestAssignVehiclesReusesCarParkedByEarlierTrip(t *testing.T) {
	p := person(0,
		trip(7, FromBorder{Intersection: 0, Goal: sim.ParkNear(101)}),
		trip(17, UsingParkedCar{Start: 101, Goal: sim.ToBorder(3, 30)}),
	)
	a, err := AssignVehicles(p, rng.New(1))
	require.NoError(t, err)

	require.Len(t, a.Specs, 1)
	assert.Empty(t, a.ParkedAt, "car arrives from off-map, it doesn't start parked")
	assert.Equal(t, []int{0, 0}, a.PerTrip)
}

func TestAssignVehiclesChainOfParkedCars(t *testing.T) {
	p := person(0,
		trip(7, UsingParkedCar{Start: 100, Goal: sim.ParkNear(101)}),
		trip(12, UsingParkedCar{Start: 101, Goal: sim.ParkNear(100)}),
		trip(18, UsingParkedCar{Start: 102, Goal: sim.ParkNear(100)}),
	)
	a, err := AssignVehicles(p, rng.New(1))
	require.NoError(t, err)

	require.Len(t, a.Specs, 2)
	assert.Equal(t, []ParkedCar{{Index: 0, Building: 100}, {Index: 1, Building: 102}}, a.ParkedAt)
	assert.Equal(t, []int{0, 0, 1}, a.PerTrip)
}

func TestAssignVehiclesOffMapReuse(t *testing.T) {
	p := person(0,
		// car 0 ends up parked, so the next appearing trip needs a new car
		trip(6, VehicleAppearing{Start: mapmodel.Position{Lane: 10}, Goal: sim.ParkNear(101)}),
		trip(8, VehicleAppearing{Start: mapmodel.Position{Lane: 10}, Goal: sim.ToBorder(3, 30)}),
		// car 1 is off-map now and gets reused rather than creating a third
		trip(10, FromBorder{Intersection: 3, Goal: sim.ToBorder(0, 10)}),
	)
	a, err := AssignVehicles(p, rng.New(1))
	require.NoError(t, err)

	require.Len(t, a.Specs, 2)
	assert.Empty(t, a.ParkedAt)
	assert.Equal(t, []int{0, 1, 1}, a.PerTrip)
}

func TestAssignVehiclesSingleBike(t *testing.T) {
	p := person(0,
		trip(7, UsingBike{Start: bldgSpot(100), Goal: sim.ParkNear(101)}),
		trip(9, FromBorder{Intersection: 0, Goal: sim.ToBorder(3, 30), IsBike: true}),
		trip(11, UsingTransit{Start: bldgSpot(101), Goal: bldgSpot(102), Route: 1, Stop1: 1, Stop2: 2}),
		trip(12, VehicleAppearing{Start: mapmodel.Position{Lane: 10}, Goal: sim.ParkNear(100), IsBike: true}),
	)
	a, err := AssignVehicles(p, rng.New(1))
	require.NoError(t, err)

	require.Len(t, a.Specs, 1)
	bike := a.Specs[0]
	assert.Equal(t, sim.VehicleBike, bike.Type)
	assert.Equal(t, sim.BikeLength, bike.Length)
	require.NotNil(t, bike.MaxSpeed)
	assert.GreaterOrEqual(t, *bike.MaxSpeed, sim.MinBikeSpeed)
	assert.Less(t, *bike.MaxSpeed, sim.MaxBikeSpeed)
	assert.Equal(t, []int{0, 0, NoVehicle, 0}, a.PerTrip)
}

func TestAssignVehiclesLengthsAreBounded(t *testing.T) {
	var trips []IndividTrip
	for i := 0; i < 50; i++ {
		trips = append(trips, trip(i, UsingParkedCar{Start: mapmodel.BuildingID(i), Goal: sim.ToBorder(3, 30)}))
	}
	a, err := AssignVehicles(person(0, trips...), rng.New(5))
	require.NoError(t, err)
	require.Len(t, a.Specs, 50)
	for _, s := range a.Specs {
		assert.GreaterOrEqual(t, s.Length, sim.MinCarLength)
		assert.Less(t, s.Length, sim.MaxCarLength)
		assert.Nil(t, s.MaxSpeed)
	}
}

func TestAssignVehiclesDeterministic(t *testing.T) {
	p := person(0,
		trip(7, UsingParkedCar{Start: 100, Goal: sim.ToBorder(3, 30)}),
		trip(9, UsingBike{Start: borderSpot(0), Goal: sim.ParkNear(100)}),
	)
	a1, err := AssignVehicles(p, rng.New(3))
	require.NoError(t, err)
	a2, err := AssignVehicles(p, rng.New(3))
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
}

func TestAssignVehiclesRejectsBadGoal(t *testing.T) {
	p := person(4, trip(7, UsingParkedCar{Start: 100, Goal: sim.DrivingGoal{Kind: "teleport"}}))
	_, err := AssignVehicles(p, rng.New(1))
	require.ErrorIs(t, err, ErrInvariant)
}
