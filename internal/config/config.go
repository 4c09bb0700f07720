package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"trip-planner-service/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TRIPPLANNER"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Geocode  GeocodeConfig  `mapstructure:"geocode"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Google   GoogleConfig   `mapstructure:"google"`
	Provider ProviderConfig `mapstructure:"provider"`
	Cost     CostConfig     `mapstructure:"cost"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	NATS     NATSConfig     `mapstructure:"nats"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Session  SessionConfig  `mapstructure:"session"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (s ServerConfig) Addr() string { return fmt.Sprintf(":%d", s.Port) }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GeocodeConfig struct {
	Provider      string  `mapstructure:"provider"`
	BaseURL       string  `mapstructure:"base_url"`
	UserAgent     string  `mapstructure:"user_agent"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
}

type RoutingConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	Profile  string `mapstructure:"profile"`
}

type GoogleConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type ProviderConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type CostConfig struct {
	UnitPerKm float64 `mapstructure:"unit_per_km"`
}

type CacheConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	DatabaseURL string `mapstructure:"database_url"`
	SeedPath    string `mapstructure:"seed_path"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	RouteTTL time.Duration `mapstructure:"route_ttl"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type SessionConfig struct {
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
	Max     int           `mapstructure:"max"`
}

const (
	ProviderNominatim = "nominatim"
	ProviderOSRM      = "osrm"
	ProviderGoogle    = "google"

	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheNone     = "none"
)

// Load reads .env (if present), an optional config.yaml and TRIPPLANNER_*
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "err", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return load(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("geocode.provider", ProviderNominatim)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "trip-planner-service/1.0")
	v.SetDefault("geocode.rate_per_second", 1.0)
	v.SetDefault("routing.provider", ProviderOSRM)
	v.SetDefault("routing.base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.profile", "driving")
	v.SetDefault("google.api_key", "")
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.max_attempts", 4)
	v.SetDefault("cost.unit_per_km", domain.DefaultUnitCostPerKm)
	v.SetDefault("cache.driver", CacheSQLite)
	v.SetDefault("cache.sqlite_path", "data/cache.db")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.seed_path", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.route_ttl", time.Hour)
	v.SetDefault("nats.url", "")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("session.idle_ttl", 2*time.Hour)
	v.SetDefault("session.max", 1000)
}

func load(v *viper.Viper) (*Config, error) {
	// TRIPPLANNER_GEOCODE_BASE_URL -> geocode.base_url
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Geocode.Provider = strings.ToLower(strings.TrimSpace(cfg.Geocode.Provider))
	cfg.Routing.Provider = strings.ToLower(strings.TrimSpace(cfg.Routing.Provider))
	cfg.Cache.Driver = strings.ToLower(strings.TrimSpace(cfg.Cache.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Geocode.Provider {
	case ProviderNominatim:
		if c.Geocode.BaseURL == "" {
			errs = append(errs, "geocode.base_url is required for nominatim")
		}
		if c.Geocode.UserAgent == "" {
			errs = append(errs, "geocode.user_agent is required for nominatim")
		}
	case ProviderGoogle:
	default:
		errs = append(errs, fmt.Sprintf("geocode.provider must be nominatim or google, got %q", c.Geocode.Provider))
	}
	if c.Geocode.RatePerSecond < 0 {
		errs = append(errs, "geocode.rate_per_second must not be negative")
	}

	switch c.Routing.Provider {
	case ProviderOSRM:
		if c.Routing.BaseURL == "" {
			errs = append(errs, "routing.base_url is required for osrm")
		}
		if c.Routing.Profile == "" {
			errs = append(errs, "routing.profile is required for osrm")
		}
	case ProviderGoogle:
	default:
		errs = append(errs, fmt.Sprintf("routing.provider must be osrm or google, got %q", c.Routing.Provider))
	}

	if (c.Geocode.Provider == ProviderGoogle || c.Routing.Provider == ProviderGoogle) &&
		strings.TrimSpace(c.Google.APIKey) == "" {
		errs = append(errs, "google.api_key is required when a google provider is selected")
	}

	if c.Provider.Timeout <= 0 {
		errs = append(errs, "provider.timeout must be positive")
	}
	if c.Provider.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("provider.max_attempts must be at least 1, got %d", c.Provider.MaxAttempts))
	}
	if c.Cost.UnitPerKm < 0 {
		errs = append(errs, "cost.unit_per_km must not be negative")
	}

	switch c.Cache.Driver {
	case CacheSQLite:
		if c.Cache.SQLitePath == "" {
			errs = append(errs, "cache.sqlite_path is required for the sqlite driver")
		}
	case CachePostgres:
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, "cache.database_url is required for the postgres driver")
		}
	case CacheNone:
	default:
		errs = append(errs, fmt.Sprintf("cache.driver must be sqlite, postgres or none, got %q", c.Cache.Driver))
	}

	if c.Redis.Addr != "" && c.Redis.RouteTTL <= 0 {
		errs = append(errs, "redis.route_ttl must be positive")
	}
	if c.Session.IdleTTL <= 0 {
		errs = append(errs, "session.idle_ttl must be positive")
	}
	if c.Session.Max < 0 {
		errs = append(errs, "session.max must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
