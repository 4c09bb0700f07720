package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"trip-planner-service/internal/adapters/cache"
	"trip-planner-service/internal/config"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/platform/logging"
)

// dbtool prepares the Postgres geocode cache: creates the schema and
// optionally preloads known places.
func main() {
	seedPath := flag.String("seed", "", "JSON file of places to preload (defaults to cache.seed_path)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, "text")

	if strings.TrimSpace(cfg.Cache.DatabaseURL) == "" {
		slog.Error("cache.database_url is required (TRIPPLANNER_CACHE_DATABASE_URL)")
		os.Exit(1)
	}

	path := *seedPath
	if path == "" {
		path = cfg.Cache.SeedPath
	}

	if err := initAndSeed(context.Background(), cfg.Cache.DatabaseURL, path); err != nil {
		slog.Error("dbtool failed", "err", err)
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, databaseURL, seedPath string) error {
	conn, err := db.OpenPostgres(databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	slog.Info("initializing geocode cache schema")
	if err := cache.InitSchema(ctx, conn, cache.DialectPostgres); err != nil {
		return err
	}
	slog.Info("schema ready")

	if seedPath == "" {
		return nil
	}

	slog.Info("seeding geocode cache", "path", seedPath)
	n, err := cache.SeedFromJSON(ctx, cache.NewSQLGeocodeCache(conn), seedPath)
	if err != nil {
		return err
	}
	slog.Info("seeding complete", "places", n)
	return nil
}
