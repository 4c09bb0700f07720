package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/metrics"
	"trip-planner-service/internal/platform/obs"

	"googlemaps.github.io/maps"
)

// GoogleGeocoder implements ports.Geocoder with the Google Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(client *maps.Client) (*GoogleGeocoder, error) {
	if client == nil {
		return nil, errors.New("google geocoder: maps client is nil")
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) Search(ctx context.Context, query string) (_ domain.Place, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	start := time.Now()
	defer func() {
		metrics.ObserveProvider("google", "geocode", start, err, errors.Is(err, domain.ErrNotFound))
	}()

	q := strings.Join(strings.Fields(query), " ")
	if q == "" {
		return domain.Place{}, errors.New("google geocode: query must be non-empty")
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: q})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return domain.Place{}, fmt.Errorf("google geocode %q: %w", q, domain.ErrNotFound)
		}
		return domain.Place{}, fmt.Errorf("google geocode %q: %w: %w", q, domain.ErrProvider, err)
	}

	if len(results) == 0 {
		return domain.Place{}, fmt.Errorf("google geocode %q: %w", q, domain.ErrNotFound)
	}

	best := results[0]
	address := strings.TrimSpace(best.FormattedAddress)
	if address == "" {
		return domain.Place{}, fmt.Errorf("google geocode %q: %w: missing formatted_address", q, domain.ErrProvider)
	}

	pos := domain.LatLng{Lat: best.Geometry.Location.Lat, Lng: best.Geometry.Location.Lng}
	if err := pos.Validate(); err != nil {
		return domain.Place{}, fmt.Errorf("google geocode %q: %w: %w", q, domain.ErrProvider, err)
	}

	return domain.Place{
		Name:     domain.NameFromAddress(address),
		Address:  address,
		PlaceRef: best.PlaceID,
		LatLng:   pos,
	}, nil
}
