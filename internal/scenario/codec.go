package scenario

import (
	"encoding/json"
	"fmt"
	"time"
)

type individTripJSON struct {
	Depart time.Duration   `json:"depart"`
	Kind   string          `json:"kind"`
	Trip   json.RawMessage `json:"trip"`
}

func (t IndividTrip) MarshalJSON() ([]byte, error) {
	if t.Trip == nil {
		return nil, fmt.Errorf("trip departing at %s has no variant", t.Depart)
	}
	body, err := json.Marshal(t.Trip)
	if err != nil {
		return nil, err
	}
	return json.Marshal(individTripJSON{Depart: t.Depart, Kind: t.Trip.kind(), Trip: body})
}

func (t *IndividTrip) UnmarshalJSON(data []byte) error {
	var raw individTripJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var (
		trip SpawnTrip
		err  error
	)
	switch raw.Kind {
	case kindVehicleAppearing:
		trip, err = decodeVariant[VehicleAppearing](raw.Trip)
	case kindFromBorder:
		trip, err = decodeVariant[FromBorder](raw.Trip)
	case kindUsingParkedCar:
		trip, err = decodeVariant[UsingParkedCar](raw.Trip)
	case kindUsingBike:
		trip, err = decodeVariant[UsingBike](raw.Trip)
	case kindJustWalking:
		trip, err = decodeVariant[JustWalking](raw.Trip)
	case kindUsingTransit:
		trip, err = decodeVariant[UsingTransit](raw.Trip)
	default:
		return fmt.Errorf("unknown trip kind %q", raw.Kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s trip: %w", raw.Kind, err)
	}
	t.Depart = raw.Depart
	t.Trip = trip
	return nil
}

func decodeVariant[T SpawnTrip](data []byte) (SpawnTrip, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
