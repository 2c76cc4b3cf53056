package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	nc          *nats.Conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, subjectPrefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("scenario-seeder"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: subjectToken(subjectPrefix), logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// Flush waits until the server has processed everything published so far.
func (p *NATSPublisher) Flush(timeout time.Duration) error {
	return p.nc.FlushTimeout(timeout)
}

type VehicleMessage struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Length   float64  `json:"length"`
	MaxSpeed *float64 `json:"maxSpeed,omitempty"`
}

type PersonMessage struct {
	Scenario string           `json:"scenario"`
	PersonID int              `json:"personId"`
	PedSpeed float64          `json:"pedSpeedMps"`
	Vehicles []VehicleMessage `json:"vehicles"`
}

type ParkedCarMessage struct {
	Scenario  string `json:"scenario"`
	VehicleID string `json:"vehicleId"`
	Owner     int    `json:"owner"`
	Spot      any    `json:"spot"`
}

type BusRouteMessage struct {
	Scenario string `json:"scenario"`
	RouteID  int    `json:"routeId"`
	Name     string `json:"name"`
	Stops    []int  `json:"stops"`
}

type TripMessage struct {
	Scenario  string  `json:"scenario"`
	PersonID  int     `json:"personId"`
	Seq       int     `json:"seq"`
	DepartSec float64 `json:"departSec"`
	Mode      string  `json:"mode"`
	Spec      any     `json:"spec"`
}

func (p *NATSPublisher) PublishPerson(msg PersonMessage) error {
	return p.publish(p.subject("people", fmt.Sprint(msg.PersonID)), msg)
}

func (p *NATSPublisher) PublishParkedCar(msg ParkedCarMessage) error {
	return p.publish(p.subject("parked", msg.VehicleID), msg)
}

func (p *NATSPublisher) PublishBusRoute(msg BusRouteMessage) error {
	return p.publish(p.subject("buses", msg.Name), msg)
}

func (p *NATSPublisher) PublishTrip(msg TripMessage) error {
	return p.publish(p.subject("trips", fmt.Sprint(msg.PersonID)), msg)
}

func (p *NATSPublisher) subject(kind, id string) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, kind, subjectToken(id))
}

func (p *NATSPublisher) publish(subject string, msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_", "#", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
