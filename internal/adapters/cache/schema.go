package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Initialize the geocode cache schema for the given SQL dialect.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	realType := "REAL"
	switch dialect {
	case DialectSQLite:
	case DialectPostgres:
		realType = "DOUBLE PRECISION"
	default:
		return fmt.Errorf("init schema: unknown dialect %q", dialect)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createGeocodeCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        query TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        address TEXT NOT NULL,
        place_ref TEXT NOT NULL DEFAULT '',
        lat %[1]s NOT NULL,
        lng %[1]s NOT NULL
    );
	`, realType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_geocode_cache_place_ref
    ON geocode_cache(place_ref);
	`

	statements := []string{
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	Query    string  `json:"query"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	PlaceRef string  `json:"place_ref"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// Populate a geocode cache with known places from a JSON file.
func SeedFromJSON(ctx context.Context, c ports.GeocodeCache, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed places: parse json: %w", err)
	}

	rows := make(map[string]domain.Place, len(data))
	for i, item := range data {
		key := NormalizeQuery(item.Query)
		if key == "" {
			return 0, fmt.Errorf("seed places: item at index %d: query cannot be empty", i+1)
		}

		address := strings.TrimSpace(item.Address)
		if address == "" {
			return 0, fmt.Errorf("seed places: item at index %d: address cannot be empty", i+1)
		}

		pos := domain.LatLng{Lat: item.Lat, Lng: item.Lng}
		if err := pos.Validate(); err != nil {
			return 0, fmt.Errorf("seed places: item at index %d: %w", i+1, err)
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = domain.NameFromAddress(address)
		}

		rows[key] = domain.Place{Name: name, Address: address, PlaceRef: item.PlaceRef, LatLng: pos}
	}

	if err := c.PutMany(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed places: %w", err)
	}

	return len(rows), nil
}
