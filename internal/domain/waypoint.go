package domain

import (
	"strings"
	"time"
)

// A resolved place as returned by a geocoding provider.
// It becomes a Waypoint once the planner assigns it an id.
type Place struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	PlaceRef string `json:"place_ref"`
	LatLng
}

// NameFromAddress returns the first comma-delimited segment of a display
// address, trimmed. An address that starts with a comma has an empty name.
func NameFromAddress(address string) string {
	first, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(first)
}

// Represents a single named, geocoded stop in the itinerary.
// The ID is assigned on creation and never changes. Arrival and departure are
// independent annotations; departure before arrival is accepted.
type Waypoint struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	PlaceRef    string     `json:"place_ref"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	ArrivalAt   *time.Time `json:"arrival_at,omitempty"`
	DepartureAt *time.Time `json:"departure_at,omitempty"`
}

func NewWaypoint(id string, p Place) Waypoint {
	return Waypoint{
		ID:       id,
		Name:     p.Name,
		Address:  p.Address,
		PlaceRef: p.PlaceRef,
		Lat:      p.Lat,
		Lng:      p.Lng,
	}
}

func (w Waypoint) Position() LatLng { return LatLng{Lat: w.Lat, Lng: w.Lng} }

// Clone returns a copy that shares no time pointers with w.
func (w Waypoint) Clone() Waypoint {
	out := w
	if w.ArrivalAt != nil {
		t := *w.ArrivalAt
		out.ArrivalAt = &t
	}
	if w.DepartureAt != nil {
		t := *w.DepartureAt
		out.DepartureAt = &t
	}
	return out
}

// Which time annotation of a waypoint an edit targets.
type TimeKind string

const (
	Arrival   TimeKind = "arrival"
	Departure TimeKind = "departure"
)

func ParseTimeKind(s string) (TimeKind, error) {
	switch TimeKind(strings.ToLower(strings.TrimSpace(s))) {
	case Arrival:
		return Arrival, nil
	case Departure:
		return Departure, nil
	}
	return "", ErrInvalidTimeKind
}
