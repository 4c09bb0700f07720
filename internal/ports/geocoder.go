package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Contract for resolving free text to a single best-match place.
type Geocoder interface {
	// Return the best match for query. Fails with domain.ErrNotFound when the
	// provider has no match and wraps domain.ErrProvider on transport/shape errors.
	Search(ctx context.Context, query string) (domain.Place, error)
}

// Persistent store of previously resolved queries.
// Keys are expected to be normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, queries []string) (map[string]domain.Place, error)
	PutMany(ctx context.Context, results map[string]domain.Place) error
}
