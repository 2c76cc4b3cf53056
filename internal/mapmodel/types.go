package mapmodel

import "fmt"

type RoadID int
type LaneID int
type BuildingID int
type IntersectionID int
type BusRouteID int
type BusStopID int

func (id RoadID) String() string         { return fmt.Sprintf("Road #%d", int(id)) }
func (id LaneID) String() string         { return fmt.Sprintf("Lane #%d", int(id)) }
func (id BuildingID) String() string     { return fmt.Sprintf("Building #%d", int(id)) }
func (id IntersectionID) String() string { return fmt.Sprintf("Intersection #%d", int(id)) }
func (id BusRouteID) String() string     { return fmt.Sprintf("BusRoute #%d", int(id)) }
func (id BusStopID) String() string      { return fmt.Sprintf("BusStop #%d", int(id)) }

// Position is a distance (meters) along a lane.
type Position struct {
	Lane      LaneID  `json:"lane" yaml:"lane"`
	DistAlong float64 `json:"dist_along" yaml:"dist_along"`
}

type LaneType string

const (
	LaneDriving  LaneType = "driving"
	LaneBiking   LaneType = "biking"
	LaneBus      LaneType = "bus"
	LaneParking  LaneType = "parking"
	LaneSidewalk LaneType = "sidewalk"
)

// PathConstraints is the movement class of whoever wants to use a lane.
type PathConstraints int

const (
	ConstraintCar PathConstraints = iota
	ConstraintBike
	ConstraintBus
	ConstraintPedestrian
)

func (c PathConstraints) String() string {
	switch c {
	case ConstraintCar:
		return "car"
	case ConstraintBike:
		return "bike"
	case ConstraintBus:
		return "bus"
	case ConstraintPedestrian:
		return "pedestrian"
	}
	return fmt.Sprintf("PathConstraints(%d)", int(c))
}

// CanUse reports whether the movement class may travel on a lane of type lt.
func (c PathConstraints) CanUse(lt LaneType) bool {
	switch c {
	case ConstraintCar:
		return lt == LaneDriving
	case ConstraintBike:
		return lt == LaneDriving || lt == LaneBiking
	case ConstraintBus:
		return lt == LaneDriving || lt == LaneBus
	case ConstraintPedestrian:
		return lt == LaneSidewalk
	}
	return false
}

type Intersection struct {
	ID     IntersectionID `json:"id" yaml:"id"`
	Border bool           `json:"border" yaml:"border"`
}

type Road struct {
	ID  RoadID         `json:"id" yaml:"id"`
	Src IntersectionID `json:"src" yaml:"src"`
	Dst IntersectionID `json:"dst" yaml:"dst"`
}

type Lane struct {
	ID     LaneID         `json:"id" yaml:"id"`
	Road   RoadID         `json:"road" yaml:"road"`
	Src    IntersectionID `json:"src" yaml:"src"`
	Dst    IntersectionID `json:"dst" yaml:"dst"`
	Type   LaneType       `json:"type" yaml:"type"`
	Length float64        `json:"length" yaml:"length"`
}

type Building struct {
	ID       BuildingID `json:"id" yaml:"id"`
	Sidewalk LaneID     `json:"sidewalk" yaml:"sidewalk"`
	// Number of off-street parking spots.
	Parking int `json:"parking" yaml:"parking"`
}

type BusRoute struct {
	ID    BusRouteID  `json:"id" yaml:"id"`
	Name  string      `json:"name" yaml:"name"`
	Stops []BusStopID `json:"stops" yaml:"stops"`
}
