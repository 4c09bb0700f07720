package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/metrics"
	"trip-planner-service/internal/ports"
)

// RouteKey identifies a route request by provider profile and the ordered
// coordinates, rounded to roughly 10 cm.
func RouteKey(profile string, points []domain.LatLng) string {
	var b strings.Builder
	b.WriteString(profile)
	for _, p := range points {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lng, 'f', 6, 64))
	}
	return b.String()
}

// CachedRouter is a read-through cache in front of a RouteProvider.
// Cache failures never fail the request; they are logged and bypassed.
type CachedRouter struct {
	next    ports.RouteProvider
	store   ports.RouteCache
	profile string
	ttl     time.Duration
}

func NewCachedRouter(next ports.RouteProvider, store ports.RouteCache, profile string, ttl time.Duration) *CachedRouter {
	return &CachedRouter{next: next, store: store, profile: profile, ttl: ttl}
}

func (c *CachedRouter) Route(ctx context.Context, points []domain.LatLng) (domain.RouteLeg, error) {
	if len(points) < 2 {
		return domain.RouteLeg{}, fmt.Errorf("cached route: %w", domain.ErrInsufficientWaypoints)
	}

	key := RouteKey(c.profile, points)

	leg, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "route cache read failed", "err", err)
	} else if ok {
		metrics.CacheHits.WithLabelValues("route").Inc()
		return leg, nil
	}
	metrics.CacheMisses.WithLabelValues("route").Inc()

	leg, err = c.next.Route(ctx, points)
	if err != nil {
		return domain.RouteLeg{}, err
	}

	if err := c.store.Put(ctx, key, leg, c.ttl); err != nil {
		slog.WarnContext(ctx, "route cache write failed", "err", err)
	}
	return leg, nil
}
