package routing

import (
	"context"
	"fmt"
	"sync"
	"trip-planner-service/internal/domain"
)

// MockRouter answers every request with straight segments between the points.
// Hook, when set, runs before the answer is produced; tests use it to block
// or fail a request.
type MockRouter struct {
	MetersPerLeg  float64
	SecondsPerLeg float64
	Hook          func(ctx context.Context, points []domain.LatLng) error

	mu    sync.Mutex
	calls int
}

func (m *MockRouter) Profile() string { return "mock" }

func (m *MockRouter) Route(ctx context.Context, points []domain.LatLng) (domain.RouteLeg, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if len(points) < 2 {
		return domain.RouteLeg{}, fmt.Errorf("mock route: %w", domain.ErrInsufficientWaypoints)
	}
	if m.Hook != nil {
		if err := m.Hook(ctx, points); err != nil {
			return domain.RouteLeg{}, err
		}
	}

	legs := float64(len(points) - 1)
	polyline := make([]domain.LatLng, len(points))
	copy(polyline, points)

	return domain.RouteLeg{
		DistanceMeters:         m.MetersPerLeg * legs,
		DurationSeconds:        m.SecondsPerLeg * legs,
		TrafficDurationSeconds: m.SecondsPerLeg * legs,
		Polyline:               polyline,
	}, nil
}

func (m *MockRouter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
