// Package availability decides which aircraft and crew members can operate a
// proposed flight. The same rules apply to every resource kind: certification
// for long flights, no overlap with an active flight, and location continuity
// (a resource departs from where its last flight landed).
package availability

import (
	"sort"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(departure time.Time, durationMinutes int) Window {
	return Window{Start: departure, End: departure.Add(time.Duration(durationMinutes) * time.Minute)}
}

func (w Window) Overlaps(other Window) bool {
	return other.Start.Before(w.End) && other.End.After(w.Start)
}

// Leg is a flight a resource is assigned to.
type Leg struct {
	FlightNumber int
	Origin       string
	Destination  string
	Window       Window
	Status       domain.FlightStatus
}

// Candidate is a resource with its flight history.
type Candidate struct {
	ID int64
	// Certified means long-flight capable: the certification flag for crew,
	// size LARGE for aircraft.
	Certified bool
	Legs      []Leg
}

type Request struct {
	Window     Window
	Origin     string
	LongFlight bool
	// Hub defaults to domain.HubAirport.
	Hub string
}

// Resolve returns the ids of the candidates free for the request, ascending.
func Resolve(req Request, candidates []Candidate) []int64 {
	hub := req.Hub
	if hub == "" {
		hub = domain.HubAirport
	}

	free := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		if req.LongFlight && !c.Certified {
			continue
		}
		if overlapsActive(c.Legs, req.Window) {
			continue
		}
		if !locatedAt(c.Legs, req.Window.Start, req.Origin, hub) {
			continue
		}
		free = append(free, c.ID)
	}
	sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
	return free
}

func overlapsActive(legs []Leg, w Window) bool {
	for _, leg := range legs {
		if leg.Status == domain.FlightStatusActive && leg.Window.Overlaps(w) {
			return true
		}
	}
	return false
}

// locatedAt reports whether the resource is at origin when departure comes.
func locatedAt(legs []Leg, departure time.Time, origin, hub string) bool {
	last, flown := LastLanding(legs, departure)
	if last != nil {
		return last.Destination == origin
	}
	return !flown && origin == hub
}

// LastLanding returns the latest non-canceled leg landing at or before t.
// Equal landing times resolve to the highest flight number. flown reports
// whether the resource has any non-canceled leg at all, before or after t.
func LastLanding(legs []Leg, t time.Time) (last *Leg, flown bool) {
	for i := range legs {
		leg := &legs[i]
		if leg.Status == domain.FlightStatusCanceled {
			continue
		}
		flown = true
		if leg.Window.End.After(t) {
			continue
		}
		if last == nil ||
			leg.Window.End.After(last.Window.End) ||
			(leg.Window.End.Equal(last.Window.End) && leg.FlightNumber > last.FlightNumber) {
			last = leg
		}
	}
	return last, flown
}
