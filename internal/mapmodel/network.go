package mapmodel

import (
	"fmt"
	"sort"
)

// Network is an immutable road network. All enumerations are in ascending ID
// order so that graph searches over it are deterministic.
type Network struct {
	name string

	intersections map[IntersectionID]Intersection
	roads         map[RoadID]Road
	lanes         map[LaneID]Lane
	buildings     map[BuildingID]Building
	busRoutes     []BusRoute

	roadOrder     []RoadID
	laneOrder     []LaneID
	buildingOrder []BuildingID
	// roads touching each intersection, ascending
	roadsAt map[IntersectionID][]RoadID
	// lanes starting at each intersection, ascending
	lanesFrom map[IntersectionID][]LaneID
}

// NewNetwork indexes the given records and checks that every reference
// resolves.
func NewNetwork(name string, intersections []Intersection, roads []Road, lanes []Lane, buildings []Building, busRoutes []BusRoute) (*Network, error) {
	n := &Network{
		name:          name,
		intersections: make(map[IntersectionID]Intersection, len(intersections)),
		roads:         make(map[RoadID]Road, len(roads)),
		lanes:         make(map[LaneID]Lane, len(lanes)),
		buildings:     make(map[BuildingID]Building, len(buildings)),
		roadsAt:       make(map[IntersectionID][]RoadID),
		lanesFrom:     make(map[IntersectionID][]LaneID),
	}
	for _, i := range intersections {
		if _, dup := n.intersections[i.ID]; dup {
			return nil, fmt.Errorf("duplicate %s", i.ID)
		}
		n.intersections[i.ID] = i
	}
	for _, r := range roads {
		if _, dup := n.roads[r.ID]; dup {
			return nil, fmt.Errorf("duplicate %s", r.ID)
		}
		for _, i := range []IntersectionID{r.Src, r.Dst} {
			if _, ok := n.intersections[i]; !ok {
				return nil, fmt.Errorf("%s references unknown %s", r.ID, i)
			}
		}
		n.roads[r.ID] = r
		n.roadOrder = append(n.roadOrder, r.ID)
		n.roadsAt[r.Src] = append(n.roadsAt[r.Src], r.ID)
		if r.Dst != r.Src {
			n.roadsAt[r.Dst] = append(n.roadsAt[r.Dst], r.ID)
		}
	}
	for _, l := range lanes {
		if _, dup := n.lanes[l.ID]; dup {
			return nil, fmt.Errorf("duplicate %s", l.ID)
		}
		if _, ok := n.roads[l.Road]; !ok {
			return nil, fmt.Errorf("%s references unknown %s", l.ID, l.Road)
		}
		if _, ok := n.intersections[l.Src]; !ok {
			return nil, fmt.Errorf("%s references unknown %s", l.ID, l.Src)
		}
		if _, ok := n.intersections[l.Dst]; !ok {
			return nil, fmt.Errorf("%s references unknown %s", l.ID, l.Dst)
		}
		if l.Length <= 0 {
			return nil, fmt.Errorf("%s has non-positive length %v", l.ID, l.Length)
		}
		n.lanes[l.ID] = l
		n.laneOrder = append(n.laneOrder, l.ID)
		n.lanesFrom[l.Src] = append(n.lanesFrom[l.Src], l.ID)
	}
	for _, b := range buildings {
		if _, dup := n.buildings[b.ID]; dup {
			return nil, fmt.Errorf("duplicate %s", b.ID)
		}
		sw, ok := n.lanes[b.Sidewalk]
		if !ok {
			return nil, fmt.Errorf("%s references unknown %s", b.ID, b.Sidewalk)
		}
		if sw.Type != LaneSidewalk {
			return nil, fmt.Errorf("%s connects to %s, which is %s, not a sidewalk", b.ID, b.Sidewalk, sw.Type)
		}
		if b.Parking < 0 {
			return nil, fmt.Errorf("%s has negative parking capacity", b.ID)
		}
		n.buildings[b.ID] = b
		n.buildingOrder = append(n.buildingOrder, b.ID)
	}
	n.busRoutes = append(n.busRoutes, busRoutes...)

	sortIDs(n.roadOrder)
	sortIDs(n.laneOrder)
	sortIDs(n.buildingOrder)
	for _, rs := range n.roadsAt {
		sortIDs(rs)
	}
	for _, ls := range n.lanesFrom {
		sortIDs(ls)
	}
	sort.SliceStable(n.busRoutes, func(i, j int) bool { return n.busRoutes[i].ID < n.busRoutes[j].ID })
	return n, nil
}

func sortIDs[T ~int](ids []T) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func (n *Network) Name() string { return n.name }

func (n *Network) AllRoads() []RoadID { return append([]RoadID(nil), n.roadOrder...) }

// NextRoads returns the roads sharing an intersection with r: those at r's
// source intersection first, then those at its destination, skipping r itself
// and duplicates.
func (n *Network) NextRoads(r RoadID) []RoadID {
	road, ok := n.roads[r]
	if !ok {
		return nil
	}
	var out []RoadID
	seen := map[RoadID]bool{r: true}
	for _, i := range []IntersectionID{road.Src, road.Dst} {
		for _, next := range n.roadsAt[i] {
			if seen[next] {
				continue
			}
			seen[next] = true
			out = append(out, next)
		}
	}
	return out
}

func (n *Network) BuildingSidewalk(b BuildingID) (LaneID, bool) {
	bldg, ok := n.buildings[b]
	if !ok {
		return 0, false
	}
	return bldg.Sidewalk, true
}

// BuildingToRoad is the road owning the building's connecting sidewalk.
func (n *Network) BuildingToRoad(b BuildingID) (RoadID, bool) {
	sw, ok := n.BuildingSidewalk(b)
	if !ok {
		return 0, false
	}
	return n.LaneParent(sw)
}

func (n *Network) LaneParent(l LaneID) (RoadID, bool) {
	lane, ok := n.lanes[l]
	if !ok {
		return 0, false
	}
	return lane.Road, true
}

func (n *Network) LaneSrc(l LaneID) (IntersectionID, bool) {
	lane, ok := n.lanes[l]
	if !ok {
		return 0, false
	}
	return lane.Src, true
}

func (n *Network) LaneLength(l LaneID) (float64, bool) {
	lane, ok := n.lanes[l]
	if !ok {
		return 0, false
	}
	return lane.Length, true
}

// IsBorder reports whether i is on the edge of the map. Unknown
// intersections aren't borders.
func (n *Network) IsBorder(i IntersectionID) bool {
	return n.intersections[i].Border
}

// OutgoingLanes lists lanes leaving i that the movement class may use.
func (n *Network) OutgoingLanes(i IntersectionID, c PathConstraints) []LaneID {
	var out []LaneID
	for _, l := range n.lanesFrom[i] {
		if c.CanUse(n.lanes[l].Type) {
			out = append(out, l)
		}
	}
	return out
}

func (n *Network) Lanes() []Lane {
	out := make([]Lane, 0, len(n.laneOrder))
	for _, id := range n.laneOrder {
		out = append(out, n.lanes[id])
	}
	return out
}

func (n *Network) Buildings() []Building {
	out := make([]Building, 0, len(n.buildingOrder))
	for _, id := range n.buildingOrder {
		out = append(out, n.buildings[id])
	}
	return out
}

func (n *Network) BusRoutes() []BusRoute { return append([]BusRoute(nil), n.busRoutes...) }
