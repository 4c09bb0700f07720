package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/metrics"
	"trip-planner-service/internal/ports"

	"github.com/google/uuid"
)

// Sessions holds independent in-memory planners, one per client session.
// Nothing is persisted; a restart starts from an empty registry.
type Sessions struct {
	cfg      PlannerConfig
	geocoder ports.Geocoder
	router   ports.RouteProvider
	events   ports.EventPublisher
	max      int

	mu       sync.RWMutex
	planners map[string]*Planner
}

func NewSessions(
	cfg PlannerConfig,
	geocoder ports.Geocoder,
	router ports.RouteProvider,
	events ports.EventPublisher,
	max int,
) *Sessions {
	return &Sessions{
		cfg:      cfg,
		geocoder: geocoder,
		router:   router,
		events:   events,
		max:      max,
		planners: make(map[string]*Planner),
	}
}

// Search geocodes query outside any session. Provider failures are
// published as a notification without a session id.
func (s *Sessions) Search(ctx context.Context, query string) (domain.Place, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Place{}, errors.New("search: query must be non-empty")
	}

	place, err := s.geocoder.Search(ctx, query)
	if err != nil {
		notifyFailure(ctx, s.events, "", fmt.Sprintf("Could not find %q", query), err)
		return domain.Place{}, fmt.Errorf("search %q: %w", query, err)
	}
	return place, nil
}

func (s *Sessions) Create() (*Planner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.planners) >= s.max {
		return nil, fmt.Errorf("create session: %w (max=%d)", domain.ErrTooManySessions, s.max)
	}

	id := uuid.NewString()
	p := NewPlanner(id, s.cfg, s.geocoder, s.router, s.events)
	s.planners[id] = p
	metrics.ActiveSessions.Set(float64(len(s.planners)))
	return p, nil
}

func (s *Sessions) Get(id string) (*Planner, error) {
	s.mu.RLock()
	p, ok := s.planners[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("get session %q: %w", id, domain.ErrSessionNotFound)
	}
	return p, nil
}

// Delete removes a session. Deleting an unknown session is a no-op.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.planners, id)
	metrics.ActiveSessions.Set(float64(len(s.planners)))
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.planners)
}

// Prune drops sessions idle for longer than ttl and returns how many were removed.
func (s *Sessions) Prune(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.planners {
		if now.Sub(p.LastTouched()) > ttl {
			delete(s.planners, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.planners)))

	if removed > 0 {
		slog.Info("pruned idle sessions", "removed", removed, "remaining", len(s.planners))
	}
	return removed
}
