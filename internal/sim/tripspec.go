package sim

import "scenario-seeder/internal/mapmodel"

// TripSpec is a fully resolved trip the engine can execute.
type TripSpec interface {
	Mode() string
	// Vehicle is the vehicle the trip uses, if any.
	Vehicle() (CarID, bool)
	isTripSpec()
}

type VehicleAppearing struct {
	StartPos   mapmodel.Position `json:"start_pos"`
	Goal       DrivingGoal       `json:"goal"`
	UseVehicle CarID             `json:"use_vehicle"`
	// Keep retrying the spawn later if there's no room right away.
	RetryIfNoRoom bool `json:"retry_if_no_room"`
}

type UsingParkedCar struct {
	StartBldg mapmodel.BuildingID `json:"start_bldg"`
	Goal      DrivingGoal         `json:"goal"`
	Car       CarID               `json:"car"`
}

type UsingBike struct {
	Bike  CarID        `json:"bike"`
	Start SidewalkSpot `json:"start"`
	Goal  DrivingGoal  `json:"goal"`
}

type JustWalking struct {
	Start SidewalkSpot `json:"start"`
	Goal  SidewalkSpot `json:"goal"`
}

type UsingTransit struct {
	Start SidewalkSpot        `json:"start"`
	Goal  SidewalkSpot        `json:"goal"`
	Route mapmodel.BusRouteID `json:"route"`
	Stop1 mapmodel.BusStopID  `json:"stop1"`
	Stop2 mapmodel.BusStopID  `json:"stop2"`
}

func (VehicleAppearing) Mode() string { return "vehicle_appearing" }
func (UsingParkedCar) Mode() string   { return "using_parked_car" }
func (UsingBike) Mode() string        { return "using_bike" }
func (JustWalking) Mode() string      { return "just_walking" }
func (UsingTransit) Mode() string     { return "using_transit" }

func (s VehicleAppearing) Vehicle() (CarID, bool) { return s.UseVehicle, true }
func (s UsingParkedCar) Vehicle() (CarID, bool)   { return s.Car, true }
func (s UsingBike) Vehicle() (CarID, bool)        { return s.Bike, true }
func (JustWalking) Vehicle() (CarID, bool)        { return CarID{}, false }
func (UsingTransit) Vehicle() (CarID, bool)       { return CarID{}, false }

func (VehicleAppearing) isTripSpec() {}
func (UsingParkedCar) isTripSpec()   {}
func (UsingBike) isTripSpec()        {}
func (JustWalking) isTripSpec()      {}
func (UsingTransit) isTripSpec()     {}

// SpawnVehicleAt places a vehicle entering at pos so that its whole length
// fits on the lane. It fails if the lane is too short.
func SpawnVehicleAt(pos mapmodel.Position, isBike bool, laneLength float64) (mapmodel.Position, bool) {
	length := MaxCarLength
	if isBike {
		length = BikeLength
	}
	front := pos.DistAlong + length
	if front >= laneLength {
		return mapmodel.Position{}, false
	}
	return mapmodel.Position{Lane: pos.Lane, DistAlong: front}, true
}
