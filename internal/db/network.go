package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"scenario-seeder/internal/mapmodel"
)

// LoadNetwork reads a road network from the map tables of an imported map
// database. Rows are read in id order so the network is the same on every
// load.
func LoadNetwork(ctx context.Context, db *sql.DB, name string) (*mapmodel.Network, error) {
	intersections, err := fetchIntersections(ctx, db)
	if err != nil {
		return nil, err
	}
	roads, err := fetchRoads(ctx, db)
	if err != nil {
		return nil, err
	}
	lanes, err := fetchLanes(ctx, db)
	if err != nil {
		return nil, err
	}
	buildings, err := fetchBuildings(ctx, db)
	if err != nil {
		return nil, err
	}
	routes, err := fetchBusRoutes(ctx, db)
	if err != nil {
		return nil, err
	}
	n, err := mapmodel.NewNetwork(name, intersections, roads, lanes, buildings, routes)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", name, err)
	}
	return n, nil
}

func fetchIntersections(ctx context.Context, db *sql.DB) ([]mapmodel.Intersection, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, is_border FROM intersections ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query intersections: %w", err)
	}
	defer rows.Close()
	var out []mapmodel.Intersection
	for rows.Next() {
		var i mapmodel.Intersection
		if err := rows.Scan(&i.ID, &i.Border); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func fetchRoads(ctx context.Context, db *sql.DB) ([]mapmodel.Road, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, src_i, dst_i FROM roads ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query roads: %w", err)
	}
	defer rows.Close()
	var out []mapmodel.Road
	for rows.Next() {
		var r mapmodel.Road
		if err := rows.Scan(&r.ID, &r.Src, &r.Dst); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func fetchLanes(ctx context.Context, db *sql.DB) ([]mapmodel.Lane, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, road_id, src_i, dst_i, lane_type, length_m FROM lanes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query lanes: %w", err)
	}
	defer rows.Close()
	var out []mapmodel.Lane
	for rows.Next() {
		var l mapmodel.Lane
		var lt string
		if err := rows.Scan(&l.ID, &l.Road, &l.Src, &l.Dst, &lt, &l.Length); err != nil {
			return nil, err
		}
		if l.Type, err = parseLaneType(lt); err != nil {
			return nil, fmt.Errorf("%s: %w", l.ID, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func fetchBuildings(ctx context.Context, db *sql.DB) ([]mapmodel.Building, error) {
	// Older imports have no off-street parking column.
	cols, err := hasColumns(ctx, db, "public", "buildings", "parking_spots")
	if err != nil {
		return nil, fmt.Errorf("inspect buildings: %w", err)
	}
	parking := "0"
	if cols["parking_spots"] {
		parking = "COALESCE(parking_spots, 0)"
	}
	q := `SELECT id, sidewalk_lane, ` + parking + ` FROM buildings ORDER BY id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query buildings: %w", err)
	}
	defer rows.Close()
	var out []mapmodel.Building
	for rows.Next() {
		var b mapmodel.Building
		if err := rows.Scan(&b.ID, &b.Sidewalk, &b.Parking); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func fetchBusRoutes(ctx context.Context, db *sql.DB) ([]mapmodel.BusRoute, error) {
	q := `
SELECT r.id, r.name, s.stop_id
FROM bus_routes r
LEFT JOIN bus_route_stops s ON s.route_id = r.id
ORDER BY r.id, s.stop_sequence`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query bus routes: %w", err)
	}
	defer rows.Close()
	var out []mapmodel.BusRoute
	for rows.Next() {
		var id mapmodel.BusRouteID
		var name string
		var stop sql.NullInt64
		if err := rows.Scan(&id, &name, &stop); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			out = append(out, mapmodel.BusRoute{ID: id, Name: name})
		}
		if stop.Valid {
			last := &out[len(out)-1]
			last.Stops = append(last.Stops, mapmodel.BusStopID(stop.Int64))
		}
	}
	return out, rows.Err()
}

func parseLaneType(s string) (mapmodel.LaneType, error) {
	switch lt := mapmodel.LaneType(strings.ToLower(strings.TrimSpace(s))); lt {
	case mapmodel.LaneDriving, mapmodel.LaneBiking, mapmodel.LaneBus, mapmodel.LaneParking, mapmodel.LaneSidewalk:
		return lt, nil
	}
	return "", fmt.Errorf("unknown lane type %q", s)
}
