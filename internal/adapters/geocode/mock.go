package geocode

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"trip-planner-service/internal/domain"
)

// MockGeocoder resolves queries from a fixed table. Used in tests and demos.
type MockGeocoder struct {
	mu     sync.Mutex
	places map[string]domain.Place
	calls  int
}

func NewMockGeocoder(places map[string]domain.Place) *MockGeocoder {
	m := make(map[string]domain.Place, len(places))
	for q, p := range places {
		m[strings.ToLower(q)] = p
	}
	return &MockGeocoder{places: m}
}

func (m *MockGeocoder) Search(ctx context.Context, query string) (domain.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	p, ok := m.places[strings.ToLower(strings.Join(strings.Fields(query), " "))]
	if !ok {
		return domain.Place{}, fmt.Errorf("mock geocode %q: %w", query, domain.ErrNotFound)
	}
	return p, nil
}

func (m *MockGeocoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
