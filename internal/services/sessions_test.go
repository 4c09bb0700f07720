package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"trip-planner-service/internal/adapters/geocode"
	"trip-planner-service/internal/adapters/routing"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"
)

func newTestSessions(max int) *Sessions {
	return NewSessions(PlannerConfig{}, geocode.NewMockGeocoder(nil), &routing.MockRouter{}, nil, max)
}

func TestSessionsCreateGetDelete(t *testing.T) {
	s := newTestSessions(0)

	p, err := s.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(p.SessionID())
	if err != nil || got != p {
		t.Fatalf("get = %v, %v", got, err)
	}

	s.Delete(p.SessionID())
	if _, err := s.Get(p.SessionID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	s.Delete(p.SessionID())
}

func TestSessionsAreIndependent(t *testing.T) {
	s := newTestSessions(0)
	a, _ := s.Create()
	b, _ := s.Create()

	if a.SessionID() == b.SessionID() {
		t.Fatal("sessions share an id")
	}
	if _, err := a.Add(context.Background(), paris); err != nil {
		t.Fatal(err)
	}
	if len(b.Itinerary()) != 0 {
		t.Fatal("mutation leaked across sessions")
	}
}

func TestSessionsLimit(t *testing.T) {
	s := newTestSessions(2)
	for i := 0; i < 2; i++ {
		if _, err := s.Create(); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	if _, err := s.Create(); !errors.Is(err, domain.ErrTooManySessions) {
		t.Fatalf("err = %v, want ErrTooManySessions", err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestSessionsPrune(t *testing.T) {
	s := newTestSessions(0)
	s.Create()
	s.Create()

	removed := s.Prune(time.Now().Add(time.Hour), 30*time.Minute)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	idle, _ := s.Create()
	active, _ := s.Create()
	_ = active.State()

	if removed := s.Prune(idle.LastTouched().Add(time.Minute), time.Hour); removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestSessionsSearchNotifiesProviderFailures(t *testing.T) {
	events := &recordingPublisher{}
	g := geocode.NewMockGeocoder(map[string]domain.Place{"paris": paris})
	s := NewSessions(PlannerConfig{}, g, &routing.MockRouter{}, events, 0)

	place, err := s.Search(context.Background(), "Paris")
	if err != nil || place.Name != "Paris" {
		t.Fatalf("search = %+v, %v", place, err)
	}
	if len(events.kinds()) != 0 {
		t.Fatalf("successful search published %v", events.kinds())
	}

	if _, err := s.Search(context.Background(), "Atlantis"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if events.count(ports.EventNotification) != 1 {
		t.Fatalf("events = %v, want one notification", events.kinds())
	}
	if e := events.events[0]; e.SessionID != "" || e.Message == "" {
		t.Fatalf("notification = %+v", e)
	}
}

func TestSessionsSearchRejectsBlankQuery(t *testing.T) {
	g := geocode.NewMockGeocoder(nil)
	s := NewSessions(PlannerConfig{}, g, &routing.MockRouter{}, nil, 0)

	if _, err := s.Search(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank query")
	}
	if g.Calls() != 0 {
		t.Fatal("blank query reached the geocoder")
	}
}
