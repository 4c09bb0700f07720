package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpclient"
	"trip-planner-service/internal/platform/metrics"
	"trip-planner-service/internal/platform/obs"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	DefaultOSRMURL     = "https://router.project-osrm.org"
	DefaultOSRMProfile = "driving"
)

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry *geojson.Geometry `json:"geometry"`
	Distance *float64          `json:"distance"`
	Duration *float64          `json:"duration"`
}

// OSRMRouter implements ports.RouteProvider using the OSRM route service.
// Waypoints are sent in the given order; OSRM never reorders them.
type OSRMRouter struct {
	http    *httpclient.Client
	baseURL string
	profile string
}

func NewOSRMRouter(client *httpclient.Client, baseURL, profile string) *OSRMRouter {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if profile == "" {
		profile = DefaultOSRMProfile
	}
	return &OSRMRouter{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
	}
}

// Profile identifies the travel mode, used to key cached routes.
func (o *OSRMRouter) Profile() string { return "osrm/" + o.profile }

func (o *OSRMRouter) Route(ctx context.Context, points []domain.LatLng) (_ domain.RouteLeg, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	if len(points) < 2 {
		return domain.RouteLeg{}, fmt.Errorf("osrm route: %w (got %d)", domain.ErrInsufficientWaypoints, len(points))
	}

	start := time.Now()
	defer func() {
		metrics.ObserveProvider("osrm", "route", start, err, errors.Is(err, domain.ErrNoRoute))
	}()

	// OSRM takes "lng,lat" pairs joined by ';'.
	pairs := make([]string, 0, len(points))
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return domain.RouteLeg{}, fmt.Errorf("osrm route: %w", err)
		}
		pairs = append(pairs,
			strconv.FormatFloat(p.Lng, 'f', -1, 64)+","+strconv.FormatFloat(p.Lat, 'f', -1, 64))
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s", o.baseURL, o.profile, strings.Join(pairs, ";"))

	resp, err := o.http.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.http.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("overview", "full")
		q.Set("geometries", "geojson")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		// OSRM reports unroutable input as HTTP 400 with a JSON code.
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			var body osrmResponse
			if json.Unmarshal([]byte(se.Body), &body) == nil && isNoRouteCode(body.Code) {
				return domain.RouteLeg{}, fmt.Errorf("osrm route: %w: %s", domain.ErrNoRoute, body.Message)
			}
		}
		return domain.RouteLeg{}, fmt.Errorf("osrm route: %w: %w", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteLeg{}, fmt.Errorf("osrm route: %w: decode response: %w", domain.ErrProvider, err)
	}

	if isNoRouteCode(decoded.Code) {
		return domain.RouteLeg{}, fmt.Errorf("osrm route: %w: %s", domain.ErrNoRoute, decoded.Message)
	}
	if decoded.Code != "Ok" {
		return domain.RouteLeg{}, fmt.Errorf("osrm route: %w: code %q: %s", domain.ErrProvider, decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 {
		return domain.RouteLeg{}, fmt.Errorf("osrm route: %w: empty route list", domain.ErrNoRoute)
	}

	leg, err := decoded.Routes[0].toLeg()
	if err != nil {
		return domain.RouteLeg{}, fmt.Errorf("osrm route: %w: %w", domain.ErrProvider, err)
	}
	return leg, nil
}

func isNoRouteCode(code string) bool {
	return code == "NoRoute" || code == "NoSegment"
}

// toLeg validates the route and converts its (lng, lat) geometry to (lat, lng).
func (r osrmRoute) toLeg() (domain.RouteLeg, error) {
	if r.Distance == nil || r.Duration == nil {
		return domain.RouteLeg{}, errors.New("route missing distance or duration")
	}
	if *r.Distance < 0 || *r.Duration < 0 {
		return domain.RouteLeg{}, fmt.Errorf("negative metrics distance=%v duration=%v", *r.Distance, *r.Duration)
	}
	if r.Geometry == nil {
		return domain.RouteLeg{}, errors.New("route missing geometry")
	}

	line, ok := r.Geometry.Geometry().(orb.LineString)
	if !ok {
		return domain.RouteLeg{}, fmt.Errorf("geometry type %q, want LineString", r.Geometry.Type)
	}
	if len(line) < 2 {
		return domain.RouteLeg{}, fmt.Errorf("geometry has %d positions, want at least 2", len(line))
	}

	polyline := make([]domain.LatLng, 0, len(line))
	for _, p := range line {
		ll := domain.LatLng{Lat: p.Lat(), Lng: p.Lon()}
		if err := ll.Validate(); err != nil {
			return domain.RouteLeg{}, err
		}
		polyline = append(polyline, ll)
	}

	return domain.RouteLeg{
		DistanceMeters:  *r.Distance,
		DurationSeconds: *r.Duration,
		// OSRM has no traffic model; the traffic-adjusted figure equals nominal.
		TrafficDurationSeconds: *r.Duration,
		Polyline:               polyline,
	}, nil
}
