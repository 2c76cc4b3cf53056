package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	PeopleInstantiated prometheus.Counter
	PeopleDropped      prometheus.Counter // nonsense schedules
	VehiclesCreated    prometheus.Counter
	BusRoutesSeeded    prometheus.Counter

	TripsScheduled prometheus.Counter
	TripsDropped   *prometheus.CounterVec // reason label: unresolvable
	TripsFlushed   prometheus.Counter
	SpawnerQueued  prometheus.Gauge

	ParkedCarsSeeded  prometheus.Counter
	ParkedCarsSkipped prometheus.Counter
	ParkingExhausted  prometheus.Counter
	ParkingSpots      prometheus.Gauge
	FreeParkingSpots  prometheus.Gauge
	RoadsSearched     prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	InstantiateDuration prometheus.Histogram
	FlushDuration       prometheus.Histogram
	PublishDuration     prometheus.Histogram

	Seed prometheus.Gauge
}

func NewCollector(seed uint64) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PeopleInstantiated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_people_instantiated_total",
			Help: "People registered with the engine.",
		}),
		PeopleDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_people_dropped_total",
			Help: "People removed for discontinuous schedules.",
		}),
		VehiclesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_vehicles_created_total",
			Help: "Cars and bikes created for people.",
		}),
		BusRoutesSeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_bus_routes_seeded_total",
			Help: "Bus routes seeded into the engine.",
		}),
		TripsScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_trips_scheduled_total",
			Help: "Trips resolved and queued in the spawner.",
		}),
		TripsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seeder_trips_dropped_total",
			Help: "Trips that could not be resolved or scheduled.",
		}, []string{"reason"}),
		TripsFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_trips_flushed_total",
			Help: "Trips flushed from the spawner to the publisher.",
		}),
		SpawnerQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seeder_spawner_queued_trips",
			Help: "Trips waiting in the spawner.",
		}),
		ParkedCarsSeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_parked_cars_seeded_total",
			Help: "Cars assigned an initial parking spot.",
		}),
		ParkedCarsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_parked_cars_skipped_total",
			Help: "Cars not seeded because parking ran out earlier in the batch.",
		}),
		ParkingExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_parking_exhausted_total",
			Help: "Batches that ran out of reachable parking.",
		}),
		ParkingSpots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seeder_parking_spots",
			Help: "Parking spots known to the engine.",
		}),
		FreeParkingSpots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seeder_free_parking_spots",
			Help: "Parking spots not yet occupied.",
		}),
		RoadsSearched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seeder_parking_roads_searched",
			Help:    "Roads visited by the parking search per car.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seeder_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seeder_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		InstantiateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seeder_instantiate_duration_seconds",
			Help:    "Duration of scenario instantiation.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seeder_flush_duration_seconds",
			Help:    "Duration of spawner flushes.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seeder_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		Seed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seeder_rng_seed",
			Help: "Seed of the base random generator.",
		}),
	}

	reg.MustRegister(
		c.PeopleInstantiated, c.PeopleDropped, c.VehiclesCreated, c.BusRoutesSeeded,
		c.TripsScheduled, c.TripsDropped, c.TripsFlushed, c.SpawnerQueued,
		c.ParkedCarsSeeded, c.ParkedCarsSkipped, c.ParkingExhausted, c.ParkingSpots, c.FreeParkingSpots, c.RoadsSearched,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.InstantiateDuration, c.FlushDuration, c.PublishDuration,
		c.Seed,
	)

	c.Seed.Set(float64(seed))

	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
