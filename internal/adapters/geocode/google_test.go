package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"trip-planner-service/internal/domain"

	"googlemaps.github.io/maps"
)

func newTestGoogleGeocoder(t *testing.T, body string) *GoogleGeocoder {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := maps.NewClient(maps.WithAPIKey("AIza-test-key"), maps.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("maps.NewClient: %v", err)
	}
	g, err := NewGoogleGeocoder(client)
	if err != nil {
		t.Fatalf("NewGoogleGeocoder: %v", err)
	}
	return g
}

func TestGoogleGeocoderSearch(t *testing.T) {
	g := newTestGoogleGeocoder(t, `{
		"status": "OK",
		"results": [{
			"formatted_address": "Berlin, Germany",
			"place_id": "ChIJAVkDPzdOqEcRcDteW0YgIQQ",
			"geometry": {"location": {"lat": 52.52, "lng": 13.405}}
		}]
	}`)

	place, err := g.Search(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.Place{
		Name:     "Berlin",
		Address:  "Berlin, Germany",
		PlaceRef: "ChIJAVkDPzdOqEcRcDteW0YgIQQ",
		LatLng:   domain.LatLng{Lat: 52.52, Lng: 13.405},
	}
	if place != want {
		t.Fatalf("place = %+v, want %+v", place, want)
	}
}

func TestGoogleGeocoderZeroResults(t *testing.T) {
	g := newTestGoogleGeocoder(t, `{"status": "ZERO_RESULTS", "results": []}`)

	_, err := g.Search(context.Background(), "qwzxv")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGoogleGeocoderDenied(t *testing.T) {
	g := newTestGoogleGeocoder(t, `{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []}`)

	_, err := g.Search(context.Background(), "Berlin")
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}
