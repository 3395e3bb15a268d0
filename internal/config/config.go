// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/justestif/go-dinner-vibe/internal/gemini"
	"github.com/justestif/go-dinner-vibe/internal/geo"
)

// Sentinel errors.
var (
	ErrInvalidBackend          = errors.New("invalid AI backend")
	ErrInvalidLocationSource   = errors.New("invalid location source")
	ErrMissingProject          = errors.New("vertex backend requires DINNER_GCP_PROJECT")
	ErrMissingStaticCoordinate = errors.New("static location requires DINNER_STATIC_LAT and DINNER_STATIC_LNG")
	ErrNotPositive             = errors.New("value must be positive")
)

// Location sources.
const (
	LocationBrowser = "browser" // browser Geolocation API
	LocationIP      = "ip"      // server-side lookup of the client IP
	LocationStatic  = "static"  // fixed coordinate
)

// Defaults.
const (
	DefaultAddr        = "127.0.0.1:8080"
	DefaultGCPLocation = "us-central1"
	DefaultSessionTTL  = 24 * time.Hour
	DefaultMaxSessions = 1024
	DefaultMoodRate    = 6 // requests per minute
	DefaultMoodBurst   = 2
)

// Config holds all application settings.
type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string

	Gemini gemini.Config

	LocationSource string
	StaticLocation geo.Coordinate
	IPLookupURL    string

	SessionSecret string // random per process when empty
	SessionTTL    time.Duration
	MaxSessions   int
	MoodRate      float64 // per minute
	MoodBurst     int
}

// Load reads configuration from environment variables.
// A missing Gemini API key is not an error here; it surfaces on the first request.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:      getenv("DINNER_ADDR", DefaultAddr),
		LogLevel:  getenv("DINNER_LOG_LEVEL", "info"),
		LogFormat: getenv("DINNER_LOG_FORMAT", "console"),
		Gemini: gemini.Config{
			Backend:         getenv("DINNER_AI_BACKEND", gemini.BackendGemini),
			APIKey:          getenv("GEMINI_API_KEY", os.Getenv("API_KEY")),
			Model:           getenv("DINNER_MODEL", gemini.DefaultModel),
			Project:         os.Getenv("DINNER_GCP_PROJECT"),
			Location:        getenv("DINNER_GCP_LOCATION", DefaultGCPLocation),
			PersonaLanguage: getenv("DINNER_PERSONA_LANGUAGE", gemini.DefaultPersonaLanguage),
		},
		LocationSource: getenv("DINNER_LOCATION_SOURCE", LocationBrowser),
		IPLookupURL:    getenv("DINNER_IP_LOOKUP_URL", geo.DefaultIPLookupURL),
		SessionSecret:  os.Getenv("DINNER_SESSION_SECRET"),
	}

	switch cfg.Gemini.Backend {
	case gemini.BackendGemini:
	case gemini.BackendVertex:
		if cfg.Gemini.Project == "" {
			return nil, ErrMissingProject
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Gemini.Backend)
	}

	switch cfg.LocationSource {
	case LocationBrowser, LocationIP:
	case LocationStatic:
		c, err := staticCoordinate()
		if err != nil {
			return nil, err
		}
		cfg.StaticLocation = c
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocationSource, cfg.LocationSource)
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("DINNER_SESSION_TTL", DefaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.MaxSessions, err = intEnv("DINNER_MAX_SESSIONS", DefaultMaxSessions); err != nil {
		return nil, err
	}
	if cfg.MoodRate, err = floatEnv("DINNER_MOOD_RATE", DefaultMoodRate); err != nil {
		return nil, err
	}
	if cfg.MoodBurst, err = intEnv("DINNER_MOOD_BURST", DefaultMoodBurst); err != nil {
		return nil, err
	}

	switch {
	case cfg.SessionTTL <= 0:
		return nil, fmt.Errorf("DINNER_SESSION_TTL: %w", ErrNotPositive)
	case cfg.MaxSessions <= 0:
		return nil, fmt.Errorf("DINNER_MAX_SESSIONS: %w", ErrNotPositive)
	case cfg.MoodRate <= 0:
		return nil, fmt.Errorf("DINNER_MOOD_RATE: %w", ErrNotPositive)
	case cfg.MoodBurst <= 0:
		return nil, fmt.Errorf("DINNER_MOOD_BURST: %w", ErrNotPositive)
	}

	return cfg, nil
}

func staticCoordinate() (geo.Coordinate, error) {
	latStr, lngStr := os.Getenv("DINNER_STATIC_LAT"), os.Getenv("DINNER_STATIC_LNG")
	if latStr == "" || lngStr == "" {
		return geo.Coordinate{}, ErrMissingStaticCoordinate
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("parsing DINNER_STATIC_LAT: %w", err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("parsing DINNER_STATIC_LNG: %w", err)
	}
	return geo.Coordinate{Latitude: lat, Longitude: lng}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return f, nil
}
