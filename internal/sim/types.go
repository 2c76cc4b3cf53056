package sim

import (
	"fmt"

	"scenario-seeder/internal/mapmodel"
)

const (
	MinCarLength      = 4.5 // meters
	MaxCarLength      = 6.5
	BikeLength        = 1.8
	ParkingSpotLength = 8.0

	mphToMps = 0.44704
)

var (
	MinBikeSpeed = 8.0 * mphToMps
	MaxBikeSpeed = 10.0 * mphToMps
	MinPedSpeed  = 2.0 * mphToMps
	MaxPedSpeed  = 3.0 * mphToMps
)

type PersonID int

func (id PersonID) String() string { return fmt.Sprintf("Person #%d", int(id)) }

type VehicleType string

const (
	VehicleCar  VehicleType = "car"
	VehicleBike VehicleType = "bike"
	VehicleBus  VehicleType = "bus"
)

type CarID struct {
	ID   int         `json:"id"`
	Type VehicleType `json:"type"`
}

func (c CarID) String() string { return fmt.Sprintf("%s #%d", c.Type, c.ID) }

type VehicleSpec struct {
	Type     VehicleType `json:"type"`
	Length   float64     `json:"length"`
	MaxSpeed *float64    `json:"max_speed,omitempty"` // m/s
}

type Vehicle struct {
	ID    CarID    `json:"id"`
	Owner PersonID `json:"owner"`
	VehicleSpec
}

type Person struct {
	ID       PersonID  `json:"id"`
	PedSpeed float64   `json:"ped_speed"`
	Vehicles []Vehicle `json:"vehicles"`
}

type GoalKind string

const (
	GoalParkNear GoalKind = "park_near"
	GoalBorder   GoalKind = "border"
)

// DrivingGoal is where a vehicle trip ends: parked near a building, or
// leaving the map through a border lane.
type DrivingGoal struct {
	Kind         GoalKind                `json:"kind"`
	Building     mapmodel.BuildingID     `json:"building,omitempty"`
	Intersection mapmodel.IntersectionID `json:"intersection,omitempty"`
	Lane         mapmodel.LaneID         `json:"lane,omitempty"`
}

func ParkNear(b mapmodel.BuildingID) DrivingGoal {
	return DrivingGoal{Kind: GoalParkNear, Building: b}
}

func ToBorder(i mapmodel.IntersectionID, l mapmodel.LaneID) DrivingGoal {
	return DrivingGoal{Kind: GoalBorder, Intersection: i, Lane: l}
}

type POIKind string

const (
	POIBuilding POIKind = "building"
	POIBorder   POIKind = "border"
	POIBusStop  POIKind = "bus_stop"
	POIBikeRack POIKind = "bike_rack"
)

type SidewalkPOI struct {
	Kind         POIKind                 `json:"kind"`
	Building     mapmodel.BuildingID     `json:"building,omitempty"`
	Intersection mapmodel.IntersectionID `json:"intersection,omitempty"`
	BusStop      mapmodel.BusStopID      `json:"bus_stop,omitempty"`
}

// SidewalkSpot is a point on a sidewalk and what it connects to.
type SidewalkSpot struct {
	Connection SidewalkPOI       `json:"connection"`
	Sidewalk   mapmodel.Position `json:"sidewalk"`
}

func BuildingSpot(b mapmodel.BuildingID, pos mapmodel.Position) SidewalkSpot {
	return SidewalkSpot{Connection: SidewalkPOI{Kind: POIBuilding, Building: b}, Sidewalk: pos}
}

func BorderSpot(i mapmodel.IntersectionID, pos mapmodel.Position) SidewalkSpot {
	return SidewalkSpot{Connection: SidewalkPOI{Kind: POIBorder, Intersection: i}, Sidewalk: pos}
}

type EndpointKind string

const (
	EndpointBuilding EndpointKind = "building"
	EndpointBorder   EndpointKind = "border"
)

type TripEndpoint struct {
	Kind         EndpointKind
	Building     mapmodel.BuildingID
	Intersection mapmodel.IntersectionID
}

func AtBuilding(b mapmodel.BuildingID) TripEndpoint {
	return TripEndpoint{Kind: EndpointBuilding, Building: b}
}

func AtBorder(i mapmodel.IntersectionID) TripEndpoint {
	return TripEndpoint{Kind: EndpointBorder, Intersection: i}
}

func (e TripEndpoint) String() string {
	if e.Kind == EndpointBuilding {
		return e.Building.String()
	}
	return "border " + e.Intersection.String()
}

type SpotKind string

const (
	SpotOnstreet  SpotKind = "onstreet"
	SpotOffstreet SpotKind = "offstreet"
)

// ParkingSpot is an on-street slot on a parking lane or an off-street slot
// inside a building.
type ParkingSpot struct {
	Kind     SpotKind            `json:"kind"`
	Lane     mapmodel.LaneID     `json:"lane,omitempty"`
	Building mapmodel.BuildingID `json:"building,omitempty"`
	Idx      int                 `json:"idx"`
}

func Onstreet(l mapmodel.LaneID, idx int) ParkingSpot {
	return ParkingSpot{Kind: SpotOnstreet, Lane: l, Idx: idx}
}

func Offstreet(b mapmodel.BuildingID, idx int) ParkingSpot {
	return ParkingSpot{Kind: SpotOffstreet, Building: b, Idx: idx}
}

func (s ParkingSpot) String() string {
	if s.Kind == SpotOnstreet {
		return fmt.Sprintf("onstreet %s/%d", s.Lane, s.Idx)
	}
	return fmt.Sprintf("offstreet %s/%d", s.Building, s.Idx)
}
