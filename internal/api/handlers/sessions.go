package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SessionHandler exposes one itinerary per session over HTTP.
type SessionHandler struct {
	Sessions *services.Sessions
}

func (h *SessionHandler) planner(w http.ResponseWriter, r *http.Request) (*services.Planner, bool) {
	p, err := h.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return p, true
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := h.Sessions.Create()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "session created", "session_id", p.SessionID())
	writeJSON(w, r, http.StatusCreated, dto.CreateSessionResponse{ID: p.SessionID()})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSessionResponse(p.SessionID(), p.State()))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) AddWaypoint(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w, r)
	if !ok {
		return
	}

	var req dto.AddWaypointRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}

	wp, err := p.AddPlace(r.Context(), req.Query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, wp)
}

// RemoveWaypoint is idempotent: removing an unknown waypoint still returns 204.
func (h *SessionHandler) RemoveWaypoint(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w, r)
	if !ok {
		return
	}

	p.Remove(r.Context(), chi.URLParam(r, "waypointID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w, r)
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := p.Reorder(r.Context(), req.IDs); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSessionResponse(p.SessionID(), p.State()))
}

func (h *SessionHandler) SetTime(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w, r)
	if !ok {
		return
	}

	kind, err := domain.ParseTimeKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req dto.SetTimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := p.SetTime(r.Context(), chi.URLParam(r, "waypointID"), kind, req.At); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSessionResponse(p.SessionID(), p.State()))
}

func (h *SessionHandler) ComputeRoute(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w, r)
	if !ok {
		return
	}

	route, err := p.ComputeRoute(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(route))
}

func (h *SessionHandler) View(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, p.View())
}

// RouteGeoJSON renders waypoints as Points and, when the current route is
// valid, the route as a LineString. Coordinates are in GeoJSON [lng, lat] order.
func (h *SessionHandler) RouteGeoJSON(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w, r)
	if !ok {
		return
	}

	state := p.State()
	fc := geojson.NewFeatureCollection()

	ids := make([]string, len(state.Waypoints))
	for i, wp := range state.Waypoints {
		ids[i] = wp.ID

		f := geojson.NewFeature(orb.Point(wp.Position().LngLat()))
		f.ID = wp.ID
		f.Properties["kind"] = "waypoint"
		f.Properties["order"] = i
		f.Properties["name"] = wp.Name
		f.Properties["address"] = wp.Address
		fc.Append(f)
	}

	if route := state.Route; route.ValidFor(ids) && len(route.Polyline) >= 2 {
		line := make(orb.LineString, len(route.Polyline))
		for i, pt := range route.Polyline {
			line[i] = orb.Point(pt.LngLat())
		}

		distance, duration, _ := route.Summary()
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["distance_meters"] = route.DistanceMeters
		f.Properties["duration_seconds"] = route.DurationSeconds
		f.Properties["cost"] = route.Cost
		f.Properties["distance_text"] = distance
		f.Properties["duration_text"] = duration
		fc.Append(f)
	}

	b, err := fc.MarshalJSON()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
