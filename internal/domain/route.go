package domain

import "fmt"

// Represents the provider-computed path for one exact waypoint sequence.
// A RouteResult is immutable planning data; WaypointIDs records the
// sequence (identity and order) it is valid for.
type RouteResult struct {
	WaypointIDs            []string `json:"waypoint_ids"`
	DistanceMeters         float64  `json:"distance_meters"`
	DurationSeconds        float64  `json:"duration_seconds"`
	TrafficDurationSeconds float64  `json:"traffic_duration_seconds"`
	Cost                   float64  `json:"cost"`
	Polyline               []LatLng `json:"polyline"`
}

// What a route provider returns before the planner tags and prices it.
type RouteLeg struct {
	DistanceMeters         float64  `json:"distance_meters"`
	DurationSeconds        float64  `json:"duration_seconds"`
	TrafficDurationSeconds float64  `json:"traffic_duration_seconds"`
	Polyline               []LatLng `json:"polyline"`
}

func (r RouteResult) DistanceKm() float64 { return r.DistanceMeters / 1000 }

func (r RouteResult) DurationMinutes() float64 { return r.DurationSeconds / 60 }

func (r RouteResult) TrafficDurationMinutes() float64 { return r.TrafficDurationSeconds / 60 }

// Summary renders the route the way the itinerary panel shows it.
func (r RouteResult) Summary() (distance, duration, traffic string) {
	return fmt.Sprintf("%.1f km", r.DistanceKm()),
		fmt.Sprintf("%.0f mins", r.DurationMinutes()),
		fmt.Sprintf("%.0f mins", r.TrafficDurationMinutes())
}

// ValidFor reports whether the route was computed for exactly this id sequence.
func (r *RouteResult) ValidFor(ids []string) bool {
	if r == nil || len(r.WaypointIDs) != len(ids) {
		return false
	}
	for i := range ids {
		if r.WaypointIDs[i] != ids[i] {
			return false
		}
	}
	return true
}
