package geocode

import (
	"bytes"
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
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// One record of the /search response. Only the fields we consume are declared.
type nominatimPlace struct {
	PlaceID     json.RawMessage `json:"place_id"`
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
}

// NominatimGeocoder implements ports.Geocoder using the OpenStreetMap
// Nominatim search API. It is safe for concurrent use.
type NominatimGeocoder struct {
	http    *httpclient.Client
	baseURL string
}

func NewNominatimGeocoder(client *httpclient.Client, baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &NominatimGeocoder{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (n *NominatimGeocoder) Search(ctx context.Context, query string) (_ domain.Place, err error) {
	defer obs.Time(ctx, "nominatim.Search")(&err)

	start := time.Now()
	defer func() {
		metrics.ObserveProvider("nominatim", "search", start, err, errors.Is(err, domain.ErrNotFound))
	}()

	q := strings.Join(strings.Fields(query), " ")
	if q == "" {
		return domain.Place{}, errors.New("nominatim search: query must be non-empty")
	}

	endpoint := n.baseURL + "/search"

	resp, err := n.http.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := n.http.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		params := req.URL.Query()
		params.Set("q", q)
		params.Set("format", "json")
		params.Set("limit", "1")
		req.URL.RawQuery = params.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Place{}, fmt.Errorf("nominatim search %q: %w: %w", q, domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	var decoded []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Place{}, fmt.Errorf("nominatim search %q: %w: decode response: %w", q, domain.ErrProvider, err)
	}

	if len(decoded) == 0 {
		return domain.Place{}, fmt.Errorf("nominatim search %q: %w", q, domain.ErrNotFound)
	}

	place, err := decoded[0].toPlace()
	if err != nil {
		return domain.Place{}, fmt.Errorf("nominatim search %q: %w: %w", q, domain.ErrProvider, err)
	}
	return place, nil
}

// toPlace validates the record and converts it to the domain model.
func (p nominatimPlace) toPlace() (domain.Place, error) {
	address := strings.TrimSpace(p.DisplayName)
	if address == "" {
		return domain.Place{}, errors.New("missing display_name")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
	if err != nil {
		return domain.Place{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
	if err != nil {
		return domain.Place{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}

	pos := domain.LatLng{Lat: lat, Lng: lng}
	if err := pos.Validate(); err != nil {
		return domain.Place{}, err
	}

	return domain.Place{
		Name:     domain.NameFromAddress(address),
		Address:  address,
		PlaceRef: placeRef(p.PlaceID),
		LatLng:   pos,
	}, nil
}

// placeRef accepts place_id as either a JSON number or a JSON string.
func placeRef(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
