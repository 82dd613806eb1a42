package domain

import "time"

type FlightStatus string

const (
	FlightStatusActive   FlightStatus = "ACTIVE"
	FlightStatusCanceled FlightStatus = "CANCELED"
)

const (
	// HubAirport is where aircraft and crew without any flight history are parked.
	HubAirport = "TLV"

	LongFlightMinutes = 360
	MaxFlightNumber   = 9999
)

type Route struct {
	Origin          string
	Destination     string
	DurationMinutes int
}

func (r Route) Duration() time.Duration {
	return time.Duration(r.DurationMinutes) * time.Minute
}

func (r Route) IsLong() bool {
	return IsLongFlight(r.DurationMinutes)
}

func IsLongFlight(durationMinutes int) bool {
	return durationMinutes >= LongFlightMinutes
}

type Flight struct {
	Number          int
	AircraftID      int64
	Origin          string
	Destination     string
	DepartureTime   time.Time
	ArrivalTime     time.Time
	DurationMinutes int
	Status          FlightStatus
}

// FlightOverview is a flight as seen from the manager's flight board.
type FlightOverview struct {
	Flight
	TotalSeats       int
	TakenSeats       int
	HoursToDeparture int
	IsPast           bool
	IsFull           bool
}

type FlightSearch struct {
	Date        *time.Time
	Origin      string
	Destination string
}

// SeatInFlight is one priced seat of a flight's inventory.
type SeatInFlight struct {
	FlightNumber int
	AircraftID   int64
	SeatPosition
	PriceCents int64
}

// SeatMapSeat is a seat of the inventory together with its claim state.
type SeatMapSeat struct {
	SeatInFlight
	Taken bool
}

type CrewRequirement struct {
	Pilots     int
	Attendants int
}

// RequiredCrew returns the minimum crew for an aircraft size.
func RequiredCrew(size AircraftSize) CrewRequirement {
	switch size {
	case AircraftSizeLarge:
		return CrewRequirement{Pilots: 3, Attendants: 6}
	case AircraftSizeSmall:
		return CrewRequirement{Pilots: 2, Attendants: 3}
	default:
		return CrewRequirement{Pilots: 2, Attendants: 2}
	}
}
