package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"scenario-seeder/internal/mapmodel"
	mmetrics "scenario-seeder/internal/metrics"
	"scenario-seeder/internal/publisher"
)

var (
	ErrDuplicatePerson = errors.New("person already exists")
	ErrUnknownPerson   = errors.New("unknown person")
	ErrUnknownVehicle  = errors.New("unknown vehicle")
	ErrNotOwner        = errors.New("vehicle not owned by person")
	ErrUnknownSpot     = errors.New("unknown parking spot")
	ErrSpotTaken       = errors.New("parking spot already taken")
	ErrAlreadyParked   = errors.New("vehicle already parked")
)

// Map is what the engine needs to know about the road network to build its
// parking inventory.
type Map interface {
	Lanes() []mapmodel.Lane
	Buildings() []mapmodel.Building
}

// Publisher receives the engine's state when the spawner is flushed.
type Publisher interface {
	PublishPerson(publisher.PersonMessage) error
	PublishParkedCar(publisher.ParkedCarMessage) error
	PublishBusRoute(publisher.BusRouteMessage) error
	PublishTrip(publisher.TripMessage) error
}

type scheduledTrip struct {
	seq    int
	person PersonID
	depart time.Duration
	spec   TripSpec
}

// Manager is the engine side of instantiation. It owns people, vehicles and
// the parking inventory, queues trips in a spawner and hands everything to
// the publisher on flush.
type Manager struct {
	pub     Publisher
	metrics *mmetrics.Collector
	logger  *log.Logger

	mu          sync.Mutex
	name        string
	people      map[PersonID]*Person
	personOrder []PersonID
	vehicles    map[CarID]Vehicle
	nextCarID   int

	spots       []ParkingSpot
	knownSpots  map[ParkingSpot]bool
	parked      map[ParkingSpot]CarID // spot -> car
	carSpot     map[CarID]ParkingSpot
	parkedOrder []ParkingSpot

	busRoutes []mapmodel.BusRoute
	spawner   []scheduledTrip
	nextSeq   int

	// how much has already been published by earlier flushes
	flushedPeople, flushedParked, flushedBuses int
}

// NewManager builds the parking inventory from m. A nil logger logs to
// log.Default().
func NewManager(m Map, pub Publisher, metrics *mmetrics.Collector, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	mgr := &Manager{
		pub:        pub,
		metrics:    metrics,
		logger:     logger,
		people:     make(map[PersonID]*Person),
		vehicles:   make(map[CarID]Vehicle),
		knownSpots: make(map[ParkingSpot]bool),
		parked:     make(map[ParkingSpot]CarID),
		carSpot:    make(map[CarID]ParkingSpot),
	}
	for _, l := range m.Lanes() {
		if l.Type != mapmodel.LaneParking {
			continue
		}
		n := int(l.Length / ParkingSpotLength)
		for idx := 0; idx < n; idx++ {
			mgr.addSpot(Onstreet(l.ID, idx))
		}
	}
	for _, b := range m.Buildings() {
		for idx := 0; idx < b.Parking; idx++ {
			mgr.addSpot(Offstreet(b.ID, idx))
		}
	}
	if metrics != nil {
		metrics.ParkingSpots.Set(float64(len(mgr.spots)))
		metrics.FreeParkingSpots.Set(float64(len(mgr.spots)))
	}
	return mgr
}

func (m *Manager) addSpot(s ParkingSpot) {
	m.spots = append(m.spots, s)
	m.knownSpots[s] = true
}

func (m *Manager) SetName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
}

func (m *Manager) SeedBusRoute(route mapmodel.BusRoute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.busRoutes {
		if r.ID == route.ID {
			return fmt.Errorf("bus route %s already seeded", route.Name)
		}
	}
	m.busRoutes = append(m.busRoutes, route)
	m.logger.Printf("seeded bus route %s with %d stops", route.Name, len(route.Stops))
	return nil
}

// NewPerson registers a person and creates their vehicles, allocating ids in
// creation order across the whole run.
func (m *Manager) NewPerson(id PersonID, pedSpeed float64, specs []VehicleSpec) (*Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.people[id]; exists {
		return nil, fmt.Errorf("%s: %w", id, ErrDuplicatePerson)
	}
	p := &Person{ID: id, PedSpeed: pedSpeed}
	for _, spec := range specs {
		v := Vehicle{ID: CarID{ID: m.nextCarID, Type: spec.Type}, Owner: id, VehicleSpec: spec}
		m.nextCarID++
		m.vehicles[v.ID] = v
		p.Vehicles = append(p.Vehicles, v)
	}
	m.people[id] = p
	m.personOrder = append(m.personOrder, id)
	if m.metrics != nil {
		m.metrics.VehiclesCreated.Add(float64(len(specs)))
	}
	out := *p
	out.Vehicles = append([]Vehicle(nil), p.Vehicles...)
	return &out, nil
}

// FreeParkingSpots lists unoccupied spots: on-street in lane order, then
// off-street in building order.
func (m *Manager) FreeParkingSpots() []ParkingSpot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ParkingSpot, 0, len(m.spots)-len(m.parked))
	for _, s := range m.spots {
		if _, taken := m.parked[s]; !taken {
			out = append(out, s)
		}
	}
	return out
}

func (m *Manager) SeedParkedCar(v Vehicle, spot ParkingSpot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.knownSpots[spot] {
		return fmt.Errorf("%s: %w", spot, ErrUnknownSpot)
	}
	if other, taken := m.parked[spot]; taken {
		return fmt.Errorf("%s holds %s: %w", spot, other, ErrSpotTaken)
	}
	known, ok := m.vehicles[v.ID]
	if !ok || known.Type != VehicleCar {
		return fmt.Errorf("%s: %w", v.ID, ErrUnknownVehicle)
	}
	if at, parked := m.carSpot[v.ID]; parked {
		return fmt.Errorf("%s at %s: %w", v.ID, at, ErrAlreadyParked)
	}
	m.parked[spot] = v.ID
	m.carSpot[v.ID] = spot
	m.parkedOrder = append(m.parkedOrder, spot)
	if m.metrics != nil {
		m.metrics.FreeParkingSpots.Set(float64(len(m.spots) - len(m.parked)))
	}
	return nil
}

// ParkedAt reports where a car was seeded, if anywhere.
func (m *Manager) ParkedAt(car CarID) (ParkingSpot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.carSpot[car]
	return s, ok
}

func (m *Manager) Person(id PersonID) (*Person, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.people[id]
	if !ok {
		return nil, false
	}
	out := *p
	out.Vehicles = append([]Vehicle(nil), p.Vehicles...)
	return &out, true
}

// ScheduleTrip queues a trip in the spawner. Any vehicle the trip uses must
// belong to the person.
func (m *Manager) ScheduleTrip(person PersonID, depart time.Duration, spec TripSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.people[person]; !ok {
		return fmt.Errorf("%s: %w", person, ErrUnknownPerson)
	}
	if car, uses := spec.Vehicle(); uses {
		v, ok := m.vehicles[car]
		if !ok {
			return fmt.Errorf("%s: %w", car, ErrUnknownVehicle)
		}
		if v.Owner != person {
			return fmt.Errorf("%s belongs to %s, not %s: %w", car, v.Owner, person, ErrNotOwner)
		}
	}
	m.spawner = append(m.spawner, scheduledTrip{seq: m.nextSeq, person: person, depart: depart, spec: spec})
	m.nextSeq++
	if m.metrics != nil {
		m.metrics.SpawnerQueued.Set(float64(len(m.spawner)))
	}
	return nil
}

// FlushSpawner publishes everything not yet published: people, bus routes,
// parked cars, then queued trips ordered by departure. It returns how many
// trips were flushed.
func (m *Manager) FlushSpawner(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := time.Now()

	for ; m.flushedPeople < len(m.personOrder); m.flushedPeople++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		p := m.people[m.personOrder[m.flushedPeople]]
		msg := publisher.PersonMessage{Scenario: m.name, PersonID: int(p.ID), PedSpeed: p.PedSpeed}
		for _, v := range p.Vehicles {
			msg.Vehicles = append(msg.Vehicles, publisher.VehicleMessage{
				ID: v.ID.String(), Type: string(v.Type), Length: v.Length, MaxSpeed: v.MaxSpeed,
			})
		}
		if err := m.pub.PublishPerson(msg); err != nil {
			return 0, fmt.Errorf("publish %s: %w", p.ID, err)
		}
	}
	for ; m.flushedBuses < len(m.busRoutes); m.flushedBuses++ {
		r := m.busRoutes[m.flushedBuses]
		msg := publisher.BusRouteMessage{Scenario: m.name, RouteID: int(r.ID), Name: r.Name}
		for _, s := range r.Stops {
			msg.Stops = append(msg.Stops, int(s))
		}
		if err := m.pub.PublishBusRoute(msg); err != nil {
			return 0, fmt.Errorf("publish bus route %s: %w", r.Name, err)
		}
	}
	for ; m.flushedParked < len(m.parkedOrder); m.flushedParked++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		spot := m.parkedOrder[m.flushedParked]
		car := m.parked[spot]
		msg := publisher.ParkedCarMessage{Scenario: m.name, VehicleID: car.String(), Owner: int(m.vehicles[car].Owner), Spot: spot}
		if err := m.pub.PublishParkedCar(msg); err != nil {
			return 0, fmt.Errorf("publish parked %s: %w", car, err)
		}
	}

	trips := m.spawner
	sort.SliceStable(trips, func(i, j int) bool { return trips[i].depart < trips[j].depart })
	flushed := 0
	for _, t := range trips {
		if err := ctx.Err(); err != nil {
			m.spawner = trips[flushed:]
			return flushed, err
		}
		msg := publisher.TripMessage{
			Scenario:  m.name,
			PersonID:  int(t.person),
			Seq:       t.seq,
			DepartSec: t.depart.Seconds(),
			Mode:      t.spec.Mode(),
			Spec:      t.spec,
		}
		if err := m.pub.PublishTrip(msg); err != nil {
			m.spawner = trips[flushed:]
			return flushed, fmt.Errorf("publish trip %d for %s: %w", t.seq, t.person, err)
		}
		flushed++
	}
	m.spawner = nil
	if m.metrics != nil {
		m.metrics.TripsFlushed.Add(float64(flushed))
		m.metrics.SpawnerQueued.Set(0)
		m.metrics.FlushDuration.Observe(time.Since(start).Seconds())
	}
	m.logger.Printf("flushed %d trips for %d people in %s", flushed, len(m.personOrder), time.Since(start).Round(time.Millisecond))
	return flushed, nil
}
