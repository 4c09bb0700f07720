package ports

import (
	"context"
	"time"
	"trip-planner-service/internal/domain"
)

// Contract for computing a path through coordinates in the given order.
type RouteProvider interface {
	// Return the path through points, preserving their order. Fails with
	// domain.ErrInsufficientWaypoints for fewer than two points,
	// domain.ErrNoRoute when no path exists, and wraps domain.ErrProvider
	// on transport/shape errors. Polyline points are always (lat, lng).
	Route(ctx context.Context, points []domain.LatLng) (domain.RouteLeg, error)
}

// Optional cache for computed routes keyed by an opaque string.
type RouteCache interface {
	Get(ctx context.Context, key string) (domain.RouteLeg, bool, error)
	Put(ctx context.Context, key string, leg domain.RouteLeg, ttl time.Duration) error
}
