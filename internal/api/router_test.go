package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"trip-planner-service/internal/adapters/geocode"
	"trip-planner-service/internal/adapters/routing"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/services"

	"github.com/paulmach/orb/geojson"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	g := geocode.NewMockGeocoder(map[string]domain.Place{
		"paris":  {Name: "Paris", Address: "Paris, France", PlaceRef: "1", LatLng: domain.LatLng{Lat: 48.8566, Lng: 2.3522}},
		"berlin": {Name: "Berlin", Address: "Berlin, Germany", PlaceRef: "2", LatLng: domain.LatLng{Lat: 52.52, Lng: 13.405}},
	})
	router := &routing.MockRouter{MetersPerLeg: 1054000, SecondsPerLeg: 36000}
	sessions := services.NewSessions(services.PlannerConfig{UnitCostPerKm: 0.15}, g, router, nil, 10)

	srv := httptest.NewServer(NewRouter(sessions, Options{AllowedOrigins: []string{"http://localhost:5173"}}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, res *http.Response, want int) {
	t.Helper()
	if res.StatusCode != want {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("%s %s: status = %d, want %d (body %s)", res.Request.Method, res.Request.URL.Path, res.StatusCode, want, b)
	}
}

func createSession(t *testing.T, base string) string {
	t.Helper()
	res := do(t, http.MethodPost, base+"/sessions", nil)
	expectStatus(t, res, http.StatusCreated)
	return decode[dto.CreateSessionResponse](t, res).ID
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	res := do(t, http.MethodGet, srv.URL+"/health", nil)
	expectStatus(t, res, http.StatusOK)
	if res.Header.Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
}

func TestPlanTripEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/sessions/" + createSession(t, srv.URL)

	var ids []string
	for _, q := range []string{"Paris", "Berlin"} {
		res := do(t, http.MethodPost, base+"/waypoints", dto.AddWaypointRequest{Query: q})
		expectStatus(t, res, http.StatusCreated)
		ids = append(ids, decode[domain.Waypoint](t, res).ID)
	}

	res := do(t, http.MethodPost, base+"/route", nil)
	expectStatus(t, res, http.StatusOK)
	route := decode[dto.RouteResponse](t, res)
	if route.DistanceText != "1054.0 km" || route.DurationText != "600 mins" {
		t.Fatalf("route summary = %q / %q", route.DistanceText, route.DurationText)
	}
	if route.Cost < 158.09 || route.Cost > 158.11 {
		t.Fatalf("cost = %v", route.Cost)
	}

	res = do(t, http.MethodGet, base+"/view", nil)
	expectStatus(t, res, http.StatusOK)
	view := decode[services.ViewState](t, res)
	if len(view.Points) != 2 || len(view.Arcs) != 1 {
		t.Fatalf("view = %+v", view)
	}

	res = do(t, http.MethodGet, base+"/route.geojson", nil)
	expectStatus(t, res, http.StatusOK)
	b, _ := io.ReadAll(res.Body)
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		t.Fatalf("geojson: %v", err)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("features = %d, want 2 points + 1 line", len(fc.Features))
	}
	if got := fc.Features[2].Geometry.GeoJSONType(); got != "LineString" {
		t.Fatalf("route geometry = %s", got)
	}

	// Reordering invalidates the route.
	res = do(t, http.MethodPut, base+"/order", dto.ReorderRequest{IDs: []string{ids[1], ids[0]}})
	expectStatus(t, res, http.StatusOK)
	session := decode[dto.SessionResponse](t, res)
	if session.Route != nil || len(session.View.Arcs) != 0 {
		t.Fatalf("route survived reorder: %+v", session)
	}
	if session.Waypoints[0].Name != "Berlin" {
		t.Fatalf("order = %+v", session.Waypoints)
	}

	res = do(t, http.MethodDelete, base+"/waypoints/"+ids[0], nil)
	expectStatus(t, res, http.StatusNoContent)
	res = do(t, http.MethodDelete, base+"/waypoints/"+ids[0], nil)
	expectStatus(t, res, http.StatusNoContent)

	res = do(t, http.MethodPost, base+"/route", nil)
	expectStatus(t, res, http.StatusUnprocessableEntity)
}

func TestSetTime(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/sessions/" + createSession(t, srv.URL)

	res := do(t, http.MethodPost, base+"/waypoints", dto.AddWaypointRequest{Query: "Paris"})
	expectStatus(t, res, http.StatusCreated)
	id := decode[domain.Waypoint](t, res).ID

	res = do(t, http.MethodPut, base+"/waypoints/"+id+"/times/arrival", map[string]any{"at": "2026-07-01T10:00:00Z"})
	expectStatus(t, res, http.StatusOK)
	session := decode[dto.SessionResponse](t, res)
	if session.Waypoints[0].ArrivalAt == nil || session.Waypoints[0].ArrivalAt.Hour() != 10 {
		t.Fatalf("arrival = %v", session.Waypoints[0].ArrivalAt)
	}

	res = do(t, http.MethodPut, base+"/waypoints/"+id+"/times/arrival", map[string]any{"at": nil})
	expectStatus(t, res, http.StatusOK)
	if decode[dto.SessionResponse](t, res).Waypoints[0].ArrivalAt != nil {
		t.Fatal("arrival was not cleared")
	}

	res = do(t, http.MethodPut, base+"/waypoints/"+id+"/times/lunch", map[string]any{"at": nil})
	expectStatus(t, res, http.StatusBadRequest)

	res = do(t, http.MethodPut, base+"/waypoints/missing/times/departure", map[string]any{"at": nil})
	expectStatus(t, res, http.StatusNotFound)
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/sessions/" + createSession(t, srv.URL)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "unknown session", method: http.MethodGet, path: "/sessions/nope", want: http.StatusNotFound},
		{name: "blank search", method: http.MethodGet, path: "/search?q=%20", want: http.StatusBadRequest},
		{name: "search miss", method: http.MethodGet, path: "/search?q=Atlantis", want: http.StatusNotFound},
		{name: "geocode miss", method: http.MethodPost, path: strings.TrimPrefix(base, srv.URL) + "/waypoints", body: dto.AddWaypointRequest{Query: "Atlantis"}, want: http.StatusNotFound},
		{name: "blank query", method: http.MethodPost, path: strings.TrimPrefix(base, srv.URL) + "/waypoints", body: dto.AddWaypointRequest{Query: " "}, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: strings.TrimPrefix(base, srv.URL) + "/waypoints", body: map[string]string{"q": "Paris"}, want: http.StatusBadRequest},
		{name: "bad permutation", method: http.MethodPut, path: strings.TrimPrefix(base, srv.URL) + "/order", body: dto.ReorderRequest{IDs: []string{"x"}}, want: http.StatusConflict},
		{name: "empty route", method: http.MethodPost, path: strings.TrimPrefix(base, srv.URL) + "/route", want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, tt.method, srv.URL+tt.path, tt.body)
			expectStatus(t, res, tt.want)

			body := decode[map[string]string](t, res)
			if body["error"] == "" {
				t.Fatalf("missing error message: %v", body)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)

	res := do(t, http.MethodGet, srv.URL+"/search?q=paris", nil)
	expectStatus(t, res, http.StatusOK)
	if got := decode[dto.PlaceResponse](t, res); got.Name != "Paris" || got.Lat != 48.8566 {
		t.Fatalf("place = %+v", got)
	}
}

func TestSearchWithinSession(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv.URL)

	res := do(t, http.MethodGet, srv.URL+"/search?q=berlin&session="+id, nil)
	expectStatus(t, res, http.StatusOK)
	if got := decode[dto.PlaceResponse](t, res); got.Name != "Berlin" {
		t.Fatalf("place = %+v", got)
	}

	res = do(t, http.MethodGet, srv.URL+"/search?q=Atlantis&session="+id, nil)
	expectStatus(t, res, http.StatusNotFound)

	res = do(t, http.MethodGet, srv.URL+"/search?q=berlin&session=nope", nil)
	expectStatus(t, res, http.StatusNotFound)
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv.URL)

	expectStatus(t, do(t, http.MethodDelete, srv.URL+"/sessions/"+id, nil), http.StatusNoContent)
	expectStatus(t, do(t, http.MethodGet, srv.URL+"/sessions/"+id, nil), http.StatusNotFound)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	do(t, http.MethodGet, srv.URL+"/health", nil)

	res := do(t, http.MethodGet, srv.URL+"/metrics", nil)
	expectStatus(t, res, http.StatusOK)
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "tripplanner_http_requests_total") {
		t.Fatal("http metrics not exported")
	}
}
