package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lcalzada-xor/factmap/internal/adapters/factsapi"
	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/geo"
)

// EnvFile is read on startup when present. Real environment variables win over it.
const EnvFile = ".env"

// Config holds all application configuration.
type Config struct {
	Addr           string
	GRPCPort       int
	DBPath         string
	FactsURL       string
	FactsCount     int
	FetchTimeout   time.Duration // 0 keeps the HTTP client default
	Latitude       float64       // NaN when the device location is not configured
	Longitude      float64
	LocationGrant  bool
	MapLoadGrace   time.Duration
	RefreshLimit   int
	RefreshWindow  time.Duration
	AllowedOrigins []string
	Debug          bool
}

// Load reads .env, the environment and command line flags to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not read %s: %v", EnvFile, err)
	}

	cfg, err := Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// Parse builds a Config from the current environment and the given arguments.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("FACTMAP_ADDR", ":8080")
	cfg.GRPCPort = getEnvInt("FACTMAP_GRPC", 9000)
	cfg.DBPath = getEnv("FACTMAP_DB", getDefaultDBPath())
	cfg.FactsURL = getEnv("FACTMAP_FACTS_URL", factsapi.DefaultBaseURL)
	cfg.FactsCount = getEnvInt("FACTMAP_FACTS_COUNT", 10)
	cfg.FetchTimeout = getEnvDuration("FACTMAP_FETCH_TIMEOUT", 0)
	cfg.Latitude = getEnvFloat("FACTMAP_LAT", math.NaN())
	cfg.Longitude = getEnvFloat("FACTMAP_LNG", math.NaN())
	cfg.LocationGrant = getEnvBool("FACTMAP_LOCATION_GRANTED", false)
	cfg.MapLoadGrace = getEnvDuration("FACTMAP_MAP_GRACE", 2*time.Second)
	cfg.RefreshLimit = getEnvInt("FACTMAP_REFRESH_LIMIT", 10)
	cfg.RefreshWindow = getEnvDuration("FACTMAP_REFRESH_WINDOW", time.Minute)
	origins := getEnv("FACTMAP_ALLOWED_ORIGINS", "")
	cfg.Debug = getEnvBool("FACTMAP_DEBUG", false)

	// Command Line Flags (Override Env)
	fs := flag.NewFlagSet("factmap", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.IntVar(&cfg.GRPCPort, "grpc", cfg.GRPCPort, "gRPC health server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database for the fetch run log")
	fs.StringVar(&cfg.FactsURL, "facts-url", cfg.FactsURL, "Base URL of the random facts API")
	fs.IntVar(&cfg.FactsCount, "facts", cfg.FactsCount, "Facts requested per fetch sequence")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Per request timeout (0 = client default)")
	fs.Float64Var(&cfg.Latitude, "lat", cfg.Latitude, "Static device latitude")
	fs.Float64Var(&cfg.Longitude, "lng", cfg.Longitude, "Static device longitude")
	fs.BoolVar(&cfg.LocationGrant, "location-granted", cfg.LocationGrant, "Start with location permission granted")
	fs.DurationVar(&cfg.MapLoadGrace, "map-grace", cfg.MapLoadGrace, "Delay before the map counts as loaded")
	fs.IntVar(&cfg.RefreshLimit, "refresh-limit", cfg.RefreshLimit, "Refresh requests allowed per client and window")
	fs.DurationVar(&cfg.RefreshWindow, "refresh-window", cfg.RefreshWindow, "Refresh rate limit window")
	fs.StringVar(&origins, "origins", origins, "Allowed WebSocket origins (comma separated)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.AllowedOrigins = parseList(origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.FactsCount < 1 {
		return fmt.Errorf("facts count must be positive, got %d", c.FactsCount)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative, got %s", c.FetchTimeout)
	}
	if c.RefreshLimit < 1 || c.RefreshWindow <= 0 {
		return fmt.Errorf("refresh rate limit must be positive, got %d per %s", c.RefreshLimit, c.RefreshWindow)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port %d", c.GRPCPort)
	}
	if math.IsNaN(c.Latitude) != math.IsNaN(c.Longitude) {
		return errors.New("latitude and longitude must be set together")
	}
	if _, ok := c.StaticLocation(); ok && !domain.IsValidCoordinate(c.Latitude, c.Longitude) {
		return fmt.Errorf("coordinates out of range: %f,%f", c.Latitude, c.Longitude)
	}
	for _, origin := range c.AllowedOrigins {
		if !domain.IsValidOrigin(origin) {
			return fmt.Errorf("invalid allowed origin %q", origin)
		}
	}
	return nil
}

// StaticLocation returns the configured device location, if any.
func (c *Config) StaticLocation() (geo.Location, bool) {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return geo.Location{}, false
	}
	return geo.Location{Latitude: c.Latitude, Longitude: c.Longitude}, true
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "factmap.db"
	}

	dir := filepath.Join(home, ".factmap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .factmap directory, using current dir: %v", err)
		return "factmap.db"
	}

	return filepath.Join(dir, "factmap.db")
}
