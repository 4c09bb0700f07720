package services

import (
	"math"
	"trip-planner-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Globe camera defaults used before any route has been computed.
const (
	DefaultAltitude = 2.5
	DefaultZoom     = 2.0
	minZoom         = 1.0
	maxZoom         = 18.0
)

// A rendering-ready marker for one waypoint.
type Point struct {
	WaypointID string  `json:"waypoint_id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// A rendering-ready segment between two consecutive polyline points.
type Arc struct {
	StartLat float64 `json:"start_lat"`
	StartLng float64 `json:"start_lng"`
	EndLat   float64 `json:"end_lat"`
	EndLng   float64 `json:"end_lng"`
}

// ViewState is derived from the itinerary and route and never edited directly.
type ViewState struct {
	Center   domain.LatLng `json:"center"`
	Altitude float64       `json:"altitude"`
	Zoom     float64       `json:"zoom"`
	Points   []Point       `json:"points"`
	Arcs     []Arc         `json:"arcs"`
}

// Project derives the view for waypoints and the last route.
// The route only contributes arcs and framing when it was computed for
// exactly the current waypoint sequence.
func Project(waypoints []domain.Waypoint, route *domain.RouteResult) ViewState {
	view := ViewState{
		Altitude: DefaultAltitude,
		Zoom:     DefaultZoom,
		Points:   make([]Point, 0, len(waypoints)),
		Arcs:     []Arc{},
	}

	ids := make([]string, len(waypoints))
	for i, w := range waypoints {
		ids[i] = w.ID
		view.Points = append(view.Points, Point{WaypointID: w.ID, Name: w.Name, Lat: w.Lat, Lng: w.Lng})
	}

	if len(waypoints) > 0 {
		view.Center = waypoints[0].Position()
	}

	if !route.ValidFor(ids) || len(route.Polyline) < 2 {
		return view
	}

	line := make(orb.LineString, 0, len(route.Polyline))
	for _, p := range route.Polyline {
		line = append(line, orb.Point{p.Lng, p.Lat})
	}

	view.Arcs = make([]Arc, 0, len(line)-1)
	for i := 0; i+1 < len(line); i++ {
		view.Arcs = append(view.Arcs, Arc{
			StartLat: line[i].Lat(),
			StartLng: line[i].Lon(),
			EndLat:   line[i+1].Lat(),
			EndLng:   line[i+1].Lon(),
		})
	}

	// Frame the polyline, not the waypoints: the path can bow outside them.
	bound := line.Bound()
	center := bound.Center()
	view.Center = domain.LatLng{Lat: center.Lat(), Lng: center.Lon()}

	span := geo.Distance(bound.Min, bound.Max) / orb.EarthRadius
	view.Altitude = 1.5 + span*2
	view.Zoom = zoomForBound(bound)

	return view
}

// zoomForBound picks a web-map zoom level at which the bound's widest side fits.
func zoomForBound(b orb.Bound) float64 {
	spanDeg := math.Max(b.Max.Lat()-b.Min.Lat(), b.Max.Lon()-b.Min.Lon())
	if spanDeg <= 0 {
		return maxZoom
	}
	z := math.Log2(360 / spanDeg)
	return math.Max(minZoom, math.Min(maxZoom, z))
}
