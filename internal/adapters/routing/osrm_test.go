package routing

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpclient"
)

var (
	paris  = domain.LatLng{Lat: 48.8566, Lng: 2.3522}
	berlin = domain.LatLng{Lat: 52.52, Lng: 13.405}
)

func newTestOSRM(t *testing.T, h http.HandlerFunc) *OSRMRouter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := httpclient.New(httpclient.Options{MaxAttempts: 2, Backoff: time.Millisecond})
	return NewOSRMRouter(client, srv.URL, "driving")
}

func TestOSRMRouteSwapsCoordinates(t *testing.T) {
	r := newTestOSRM(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/route/v1/driving/2.3522,48.8566;13.405,52.52" {
			t.Errorf("path = %q", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("overview") != "full" || q.Get("geometries") != "geojson" {
			t.Errorf("query = %q", req.URL.RawQuery)
		}
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"geometry": {"type": "LineString", "coordinates": [[2.3522, 48.8566], [8.6821, 50.1109], [13.405, 52.52]]},
				"distance": 1054321.5,
				"duration": 36000
			}]
		}`))
	})

	leg, err := r.Route(context.Background(), []domain.LatLng{paris, berlin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(leg.Polyline) != 3 {
		t.Fatalf("polyline has %d points, want 3", len(leg.Polyline))
	}
	first := leg.Polyline[0]
	if math.Abs(first.Lat-paris.Lat) > 1e-9 || math.Abs(first.Lng-paris.Lng) > 1e-9 {
		t.Fatalf("first point = %v, want %v (lat, lng)", first, paris)
	}
	if leg.Polyline[1].Lat != 50.1109 || leg.Polyline[1].Lng != 8.6821 {
		t.Fatalf("middle point = %v, want (50.1109, 8.6821)", leg.Polyline[1])
	}
	if leg.DistanceMeters != 1054321.5 || leg.DurationSeconds != 36000 {
		t.Fatalf("metrics = %v m / %v s", leg.DistanceMeters, leg.DurationSeconds)
	}
	if leg.TrafficDurationSeconds != leg.DurationSeconds {
		t.Fatalf("traffic duration = %v, want nominal %v", leg.TrafficDurationSeconds, leg.DurationSeconds)
	}
}

func TestOSRMRouteErrors(t *testing.T) {
	cases := []struct {
		name string
		code int
		body string
		want error
	}{
		{"empty routes", http.StatusOK, `{"code": "Ok", "routes": []}`, domain.ErrNoRoute},
		{"no route code", http.StatusBadRequest, `{"code": "NoRoute", "message": "Impossible route"}`, domain.ErrNoRoute},
		{"no segment code", http.StatusBadRequest, `{"code": "NoSegment", "message": "Could not find a matching segment"}`, domain.ErrNoRoute},
		{"invalid query", http.StatusBadRequest, `{"code": "InvalidQuery", "message": "bad"}`, domain.ErrProvider},
		{"server error", http.StatusBadGateway, `upstream down`, domain.ErrProvider},
		{"not json", http.StatusOK, `<html></html>`, domain.ErrProvider},
		{"point geometry", http.StatusOK, `{"code": "Ok", "routes": [{"geometry": {"type": "Point", "coordinates": [2, 48]}, "distance": 1, "duration": 1}]}`, domain.ErrProvider},
		{"single position", http.StatusOK, `{"code": "Ok", "routes": [{"geometry": {"type": "LineString", "coordinates": [[2, 48]]}, "distance": 1, "duration": 1}]}`, domain.ErrProvider},
		{"missing distance", http.StatusOK, `{"code": "Ok", "routes": [{"geometry": {"type": "LineString", "coordinates": [[2, 48], [3, 49]]}, "duration": 1}]}`, domain.ErrProvider},
		{"out of range position", http.StatusOK, `{"code": "Ok", "routes": [{"geometry": {"type": "LineString", "coordinates": [[2, 48], [3, 99]]}, "distance": 1, "duration": 1}]}`, domain.ErrProvider},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestOSRM(t, func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			})

			_, err := r.Route(context.Background(), []domain.LatLng{paris, berlin})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestOSRMRouteRequiresTwoPoints(t *testing.T) {
	called := false
	r := newTestOSRM(t, func(w http.ResponseWriter, req *http.Request) {
		called = true
	})

	_, err := r.Route(context.Background(), []domain.LatLng{paris})
	if !errors.Is(err, domain.ErrInsufficientWaypoints) {
		t.Fatalf("err = %v, want ErrInsufficientWaypoints", err)
	}
	if called {
		t.Fatal("provider must not be called with fewer than two points")
	}
}
