package dto

import (
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/services"
)

type CreateSessionResponse struct {
	ID string `json:"id"`
}

type AddWaypointRequest struct {
	Query string `json:"query"`
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// A null or omitted At clears the time.
type SetTimeRequest struct {
	At *time.Time `json:"at"`
}

type RouteResponse struct {
	WaypointIDs            []string        `json:"waypoint_ids"`
	DistanceMeters         float64         `json:"distance_meters"`
	DistanceKm             float64         `json:"distance_km"`
	DurationSeconds        float64         `json:"duration_seconds"`
	DurationMinutes        float64         `json:"duration_minutes"`
	TrafficDurationSeconds float64         `json:"traffic_duration_seconds"`
	TrafficDurationMinutes float64         `json:"traffic_duration_minutes"`
	DistanceText           string          `json:"distance_text"`
	DurationText           string          `json:"duration_text"`
	TrafficDurationText    string          `json:"traffic_duration_text"`
	Cost                   float64         `json:"cost"`
	Polyline               []domain.LatLng `json:"polyline"`
}

func NewRouteResponse(r *domain.RouteResult) *RouteResponse {
	if r == nil {
		return nil
	}

	distance, duration, traffic := r.Summary()
	return &RouteResponse{
		WaypointIDs:            r.WaypointIDs,
		DistanceMeters:         r.DistanceMeters,
		DistanceKm:             r.DistanceKm(),
		DurationSeconds:        r.DurationSeconds,
		DurationMinutes:        r.DurationMinutes(),
		TrafficDurationSeconds: r.TrafficDurationSeconds,
		TrafficDurationMinutes: r.TrafficDurationMinutes(),
		DistanceText:           distance,
		DurationText:           duration,
		TrafficDurationText:    traffic,
		Cost:                   r.Cost,
		Polyline:               r.Polyline,
	}
}

type SessionResponse struct {
	ID        string             `json:"id"`
	Version   uint64             `json:"version"`
	Waypoints []domain.Waypoint  `json:"waypoints"`
	Route     *RouteResponse     `json:"route"`
	View      services.ViewState `json:"view"`
}

func NewSessionResponse(id string, s services.State) SessionResponse {
	return SessionResponse{
		ID:        id,
		Version:   s.Version,
		Waypoints: s.Waypoints,
		Route:     NewRouteResponse(s.Route),
		View:      s.View,
	}
}
