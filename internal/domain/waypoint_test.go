package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNameFromAddress(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"Paris, Île-de-France, France métropolitaine, France", "Paris"},
		{"Berlin", "Berlin"},
		{"  Madrid , Spain", "Madrid"},
		{", nowhere", ""},
		{"  , nowhere", ""},
		{"Tokyo,", "Tokyo"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NameFromAddress(tc.address); got != tc.want {
			t.Errorf("NameFromAddress(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}

func TestLatLngValidate(t *testing.T) {
	valid := []LatLng{{0, 0}, {90, 180}, {-90, -180}, {48.8566, 2.3522}}
	for _, c := range valid {
		if err := c.Validate(); err != nil {
			t.Errorf("%v: unexpected error: %v", c, err)
		}
	}

	invalid := []LatLng{{91, 0}, {0, -180.5}, {math.NaN(), 0}, {0, math.Inf(1)}}
	for _, c := range invalid {
		if err := c.Validate(); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("%v: err = %v, want ErrInvalidCoordinates", c, err)
		}
	}
}

func TestWaypointCloneDetachesTimes(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	w := Waypoint{ID: "a", ArrivalAt: &at}

	c := w.Clone()
	*c.ArrivalAt = at.Add(time.Hour)

	if !w.ArrivalAt.Equal(at) {
		t.Fatalf("clone shares arrival pointer with original")
	}
}

func TestParseTimeKind(t *testing.T) {
	if k, err := ParseTimeKind("Arrival"); err != nil || k != Arrival {
		t.Fatalf("ParseTimeKind(Arrival) = %q, %v", k, err)
	}
	if k, err := ParseTimeKind("departure"); err != nil || k != Departure {
		t.Fatalf("ParseTimeKind(departure) = %q, %v", k, err)
	}
	if _, err := ParseTimeKind("lunch"); !errors.Is(err, ErrInvalidTimeKind) {
		t.Fatalf("ParseTimeKind(lunch) err = %v, want ErrInvalidTimeKind", err)
	}
}

func TestRouteResultValidFor(t *testing.T) {
	r := &RouteResult{WaypointIDs: []string{"a", "b"}}

	if !r.ValidFor([]string{"a", "b"}) {
		t.Errorf("expected route valid for its own sequence")
	}
	if r.ValidFor([]string{"b", "a"}) {
		t.Errorf("expected route invalid after reorder")
	}
	if r.ValidFor([]string{"a"}) {
		t.Errorf("expected route invalid after removal")
	}

	var nilRoute *RouteResult
	if nilRoute.ValidFor(nil) {
		t.Errorf("nil route must never be valid")
	}
}
