package scenario

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/sim"
)

func TestScenarioJSONRoundTrip(t *testing.T) {
	s := &Scenario{
		Name:    "weekday",
		MapName: "line",
		People: []PersonSpec{
			person(0,
				trip(6, VehicleAppearing{Start: mapmodel.Position{Lane: 10, DistAlong: 3}, Goal: sim.ParkNear(101)}),
				trip(7, FromBorder{Intersection: 0, Goal: sim.ToBorder(3, 30), IsBike: true}),
				trip(8, UsingParkedCar{Start: 101, Goal: sim.ParkNear(102)}),
				trip(9, UsingBike{Start: bldgSpot(102), Goal: sim.ParkNear(100)}),
				trip(10, JustWalking{Start: bldgSpot(100), Goal: borderSpot(4)}),
				trip(11, UsingTransit{Start: borderSpot(4), Goal: bldgSpot(102), Route: 2, Stop1: 3, Stop2: 4}),
			),
		},
		OnlySeedBuses: []string{"44"},
	}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got Scenario
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *s, got)
}

func TestScenarioJSONBusFilter(t *testing.T) {
	var all Scenario
	require.NoError(t, json.Unmarshal([]byte(`{"scenario_name":"a","map_name":"m","people":[],"only_seed_buses":null}`), &all))
	assert.Nil(t, all.OnlySeedBuses)

	empty := Empty("m", "b")
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	var none Scenario
	require.NoError(t, json.Unmarshal(data, &none))
	assert.NotNil(t, none.OnlySeedBuses)
	assert.Empty(t, none.OnlySeedBuses)
}

func TestIndividTripJSONErrors(t *testing.T) {
	var tr IndividTrip
	assert.Error(t, json.Unmarshal([]byte(`{"depart":0,"kind":"teleport","trip":{}}`), &tr))
	assert.Error(t, json.Unmarshal([]byte(`{"depart":0,"kind":"from_border","trip":[]}`), &tr))

	_, err := json.Marshal(IndividTrip{})
	assert.Error(t, err)
}
