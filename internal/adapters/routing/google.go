package routing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/metrics"
	"trip-planner-service/internal/platform/obs"

	"googlemaps.github.io/maps"
)

// GoogleRouter implements ports.RouteProvider with the Google Directions API.
// Intermediate points are passed as waypoints without optimization, so the
// itinerary order is the leg order.
type GoogleRouter struct {
	client *maps.Client
	mode   maps.Mode
}

func NewGoogleRouter(client *maps.Client, mode string) (*GoogleRouter, error) {
	if client == nil {
		return nil, errors.New("google router: maps client is nil")
	}

	m := maps.TravelModeDriving
	switch strings.ToLower(mode) {
	case "", "driving":
	case "walking":
		m = maps.TravelModeWalking
	case "bicycling", "cycling":
		m = maps.TravelModeBicycling
	default:
		return nil, fmt.Errorf("google router: unsupported mode %q", mode)
	}

	return &GoogleRouter{client: client, mode: m}, nil
}

func (g *GoogleRouter) Profile() string { return "google/" + string(g.mode) }

func latLngParam(p domain.LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

func (g *GoogleRouter) Route(ctx context.Context, points []domain.LatLng) (_ domain.RouteLeg, err error) {
	defer obs.Time(ctx, "google.Directions")(&err)

	if len(points) < 2 {
		return domain.RouteLeg{}, fmt.Errorf("google route: %w (got %d)", domain.ErrInsufficientWaypoints, len(points))
	}

	start := time.Now()
	defer func() {
		metrics.ObserveProvider("google", "route", start, err, errors.Is(err, domain.ErrNoRoute))
	}()

	for _, p := range points {
		if err := p.Validate(); err != nil {
			return domain.RouteLeg{}, fmt.Errorf("google route: %w", err)
		}
	}

	req := &maps.DirectionsRequest{
		Origin:      latLngParam(points[0]),
		Destination: latLngParam(points[len(points)-1]),
		Mode:        g.mode,
	}
	for _, p := range points[1 : len(points)-1] {
		req.Waypoints = append(req.Waypoints, latLngParam(p))
	}
	if g.mode == maps.TravelModeDriving {
		req.DepartureTime = "now"
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") || strings.Contains(err.Error(), "NOT_FOUND") {
			return domain.RouteLeg{}, fmt.Errorf("google route: %w", domain.ErrNoRoute)
		}
		return domain.RouteLeg{}, fmt.Errorf("google route: %w: %w", domain.ErrProvider, err)
	}
	if len(routes) == 0 {
		return domain.RouteLeg{}, fmt.Errorf("google route: %w: empty route list", domain.ErrNoRoute)
	}

	best := routes[0]
	path, err := best.OverviewPolyline.Decode()
	if err != nil {
		return domain.RouteLeg{}, fmt.Errorf("google route: %w: decode polyline: %w", domain.ErrProvider, err)
	}
	if len(path) < 2 {
		return domain.RouteLeg{}, fmt.Errorf("google route: %w: polyline has %d points", domain.ErrProvider, len(path))
	}

	var meters int
	var nominal, traffic time.Duration
	for _, leg := range best.Legs {
		meters += leg.Distance.Meters
		nominal += leg.Duration
		if leg.DurationInTraffic > 0 {
			traffic += leg.DurationInTraffic
		} else {
			traffic += leg.Duration
		}
	}

	polyline := make([]domain.LatLng, 0, len(path))
	for _, p := range path {
		polyline = append(polyline, domain.LatLng{Lat: p.Lat, Lng: p.Lng})
	}

	return domain.RouteLeg{
		DistanceMeters:         float64(meters),
		DurationSeconds:        nominal.Seconds(),
		TrafficDurationSeconds: traffic.Seconds(),
		Polyline:               polyline,
	}, nil
}
