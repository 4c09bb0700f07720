package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/metrics"
	"trip-planner-service/internal/ports"

	"golang.org/x/sync/singleflight"
)

// NormalizeQuery produces the cache key for a free-text query:
// whitespace collapsed and lower-cased.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Upper bound for a coalesced upstream lookup, which no caller can cancel.
const sharedLookupTimeout = 30 * time.Second

// CachedGeocoder is a read-through cache in front of a Geocoder.
// Concurrent lookups of the same query share one upstream call.
// Only successful lookups are cached; misses and errors always go upstream.
type CachedGeocoder struct {
	next  ports.Geocoder
	store ports.GeocodeCache
	group singleflight.Group
}

func NewCachedGeocoder(next ports.Geocoder, store ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{next: next, store: store}
}

func (c *CachedGeocoder) Search(ctx context.Context, query string) (domain.Place, error) {
	key := NormalizeQuery(query)
	if key == "" {
		return domain.Place{}, errors.New("cached geocode: query must be non-empty")
	}

	hits, err := c.store.GetMany(ctx, []string{key})
	if err != nil {
		slog.WarnContext(ctx, "geocode cache read failed", "query", key, "err", err)
	} else if p, ok := hits[key]; ok {
		metrics.CacheHits.WithLabelValues("geocode").Inc()
		return p, nil
	}
	metrics.CacheMisses.WithLabelValues("geocode").Inc()

	// The shared lookup is detached from any one caller's cancellation;
	// each caller stops waiting when its own ctx is done.
	ch := c.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()

		p, err := c.next.Search(shared, query)
		if err != nil {
			return domain.Place{}, err
		}
		if err := c.store.PutMany(shared, map[string]domain.Place{key: p}); err != nil {
			slog.WarnContext(shared, "geocode cache write failed", "query", key, "err", err)
		}
		return p, nil
	})

	select {
	case <-ctx.Done():
		return domain.Place{}, fmt.Errorf("cached geocode %q: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Place{}, fmt.Errorf("cached geocode: %w", res.Err)
		}
		return res.Val.(domain.Place), nil
	}
}
