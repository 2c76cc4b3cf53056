package main

import (
	"time"

	"scenario-seeder/internal/metrics"
	"scenario-seeder/internal/publisher"
	"scenario-seeder/internal/scenario"
)

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}

// wrapScenarioMetrics adapts our Collector to scenario.Metrics.
func wrapScenarioMetrics(c *metrics.Collector) scenario.Metrics {
	if c == nil {
		return nil
	}
	return &scenarioMetrics{c: c}
}

type scenarioMetrics struct{ c *metrics.Collector }

func (s *scenarioMetrics) PersonInstantiated()       { s.c.PeopleInstantiated.Inc() }
func (s *scenarioMetrics) BusRouteSeeded()           { s.c.BusRoutesSeeded.Inc() }
func (s *scenarioMetrics) TripScheduled()            { s.c.TripsScheduled.Inc() }
func (s *scenarioMetrics) TripDropped(reason string) { s.c.TripsDropped.WithLabelValues(reason).Inc() }
func (s *scenarioMetrics) ParkedCarSeeded()          { s.c.ParkedCarsSeeded.Inc() }
func (s *scenarioMetrics) ParkedCarSkipped()         { s.c.ParkedCarsSkipped.Inc() }
func (s *scenarioMetrics) ParkingExhausted()         { s.c.ParkingExhausted.Inc() }
func (s *scenarioMetrics) RoadsSearched(n int)       { s.c.RoadsSearched.Observe(float64(n)) }
