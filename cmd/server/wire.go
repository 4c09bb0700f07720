package main

import (
	"context"
	"fmt"
	"log/slog"
	"trip-planner-service/internal/adapters/cache"
	"trip-planner-service/internal/adapters/events"
	"trip-planner-service/internal/adapters/geocode"
	"trip-planner-service/internal/adapters/routing"
	"trip-planner-service/internal/config"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/platform/httpclient"
	"trip-planner-service/internal/ports"

	"googlemaps.github.io/maps"
)

// providerOptions is the HTTP client setup shared by the provider adapters.
func providerOptions(cfg *config.Config) httpclient.Options {
	return httpclient.Options{
		Timeout:     cfg.Provider.Timeout,
		MaxAttempts: cfg.Provider.MaxAttempts,
		UserAgent:   cfg.Geocode.UserAgent,
	}
}

type profiledRouter interface {
	ports.RouteProvider
	Profile() string
}

type dependencies struct {
	geocoder ports.Geocoder
	router   ports.RouteProvider
	events   ports.EventPublisher

	closers []func()
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func wire(ctx context.Context, cfg *config.Config) (_ *dependencies, err error) {
	d := &dependencies{}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	var gmaps *maps.Client
	if cfg.Geocode.Provider == config.ProviderGoogle || cfg.Routing.Provider == config.ProviderGoogle {
		gmaps, err = maps.NewClient(maps.WithAPIKey(cfg.Google.APIKey))
		if err != nil {
			return nil, fmt.Errorf("google maps client: %w", err)
		}
	}

	d.geocoder, err = buildGeocoder(ctx, cfg, gmaps, d)
	if err != nil {
		return nil, err
	}

	d.router, err = buildRouter(ctx, cfg, gmaps, d)
	if err != nil {
		return nil, err
	}

	d.events, err = buildEvents(cfg, d)
	if err != nil {
		return nil, err
	}

	return d, nil
}

func buildGeocoder(ctx context.Context, cfg *config.Config, gmaps *maps.Client, d *dependencies) (ports.Geocoder, error) {
	var base ports.Geocoder
	switch cfg.Geocode.Provider {
	case config.ProviderGoogle:
		g, err := geocode.NewGoogleGeocoder(gmaps)
		if err != nil {
			return nil, err
		}
		base = g
	default:
		opts := providerOptions(cfg)
		opts.RatePerSecond = cfg.Geocode.RatePerSecond
		client := httpclient.New(opts)
		base = geocode.NewNominatimGeocoder(client, cfg.Geocode.BaseURL)
	}

	var store ports.GeocodeCache
	switch cfg.Cache.Driver {
	case config.CacheNone:
		return base, nil
	case config.CachePostgres:
		conn, err := db.OpenPostgres(cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { conn.Close() })
		if err := cache.InitSchema(ctx, conn, cache.DialectPostgres); err != nil {
			return nil, err
		}
		store = cache.NewSQLGeocodeCache(conn)
	default:
		conn, err := db.OpenSQLite(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { conn.Close() })
		if err := cache.InitSchema(ctx, conn, cache.DialectSQLite); err != nil {
			return nil, err
		}
		store = cache.NewSqliteGeocodeCache(conn)
	}

	if cfg.Cache.SeedPath != "" {
		n, err := cache.SeedFromJSON(ctx, store, cfg.Cache.SeedPath)
		if err != nil {
			return nil, err
		}
		slog.Info("geocode cache seeded", "places", n, "path", cfg.Cache.SeedPath)
	}

	return cache.NewCachedGeocoder(base, store), nil
}

func buildRouter(ctx context.Context, cfg *config.Config, gmaps *maps.Client, d *dependencies) (ports.RouteProvider, error) {
	var base profiledRouter
	switch cfg.Routing.Provider {
	case config.ProviderGoogle:
		r, err := routing.NewGoogleRouter(gmaps, cfg.Routing.Profile)
		if err != nil {
			return nil, err
		}
		base = r
	default:
		client := httpclient.New(providerOptions(cfg))
		base = routing.NewOSRMRouter(client, cfg.Routing.BaseURL, cfg.Routing.Profile)
	}

	if cfg.Redis.Addr == "" {
		return base, nil
	}

	rdb, err := cache.Connect(ctx, cfg.Redis.Addr)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, func() { rdb.Close() })

	return cache.NewCachedRouter(base, cache.NewRedisRouteCache(rdb), base.Profile(), cfg.Redis.RouteTTL), nil
}

func buildEvents(cfg *config.Config, d *dependencies) (ports.EventPublisher, error) {
	if cfg.NATS.URL == "" {
		return events.NewLogPublisher(slog.Default()), nil
	}

	pub, err := events.NewNATSPublisher(cfg.NATS.URL)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, pub.Close)
	return pub, nil
}

