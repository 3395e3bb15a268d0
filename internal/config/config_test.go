package config

import (
	"errors"
	"testing"
	"time"

	"github.com/justestif/go-dinner-vibe/internal/gemini"
	"github.com/justestif/go-dinner-vibe/internal/geo"
)

var allKeys = []string{
	"DINNER_ADDR", "DINNER_LOG_LEVEL", "DINNER_LOG_FORMAT",
	"GEMINI_API_KEY", "API_KEY", "DINNER_MODEL", "DINNER_AI_BACKEND",
	"DINNER_GCP_PROJECT", "DINNER_GCP_LOCATION", "DINNER_PERSONA_LANGUAGE",
	"DINNER_LOCATION_SOURCE", "DINNER_STATIC_LAT", "DINNER_STATIC_LNG", "DINNER_IP_LOOKUP_URL",
	"DINNER_SESSION_SECRET", "DINNER_SESSION_TTL", "DINNER_MAX_SESSIONS",
	"DINNER_MOOD_RATE", "DINNER_MOOD_BURST",
}

// clearEnv blanks every variable Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %s, want %s", cfg.Addr, DefaultAddr)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "console" {
		t.Errorf("log = %s/%s, want info/console", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Gemini.Backend != gemini.BackendGemini {
		t.Errorf("Backend = %s, want %s", cfg.Gemini.Backend, gemini.BackendGemini)
	}
	if cfg.Gemini.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != gemini.DefaultModel {
		t.Errorf("Model = %s, want %s", cfg.Gemini.Model, gemini.DefaultModel)
	}
	if cfg.Gemini.PersonaLanguage != gemini.DefaultPersonaLanguage {
		t.Errorf("PersonaLanguage = %s, want %s", cfg.Gemini.PersonaLanguage, gemini.DefaultPersonaLanguage)
	}
	if cfg.LocationSource != LocationBrowser {
		t.Errorf("LocationSource = %s, want %s", cfg.LocationSource, LocationBrowser)
	}
	if cfg.IPLookupURL != geo.DefaultIPLookupURL {
		t.Errorf("IPLookupURL = %s, want %s", cfg.IPLookupURL, geo.DefaultIPLookupURL)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("SessionTTL = %v, want %v", cfg.SessionTTL, DefaultSessionTTL)
	}
	if cfg.MaxSessions != DefaultMaxSessions {
		t.Errorf("MaxSessions = %d, want %d", cfg.MaxSessions, DefaultMaxSessions)
	}
	if cfg.MoodRate != DefaultMoodRate || cfg.MoodBurst != DefaultMoodBurst {
		t.Errorf("mood limit = %v/%d, want %v/%d", cfg.MoodRate, cfg.MoodBurst, float64(DefaultMoodRate), DefaultMoodBurst)
	}
}

func TestLoad_APIKey(t *testing.T) {
	tests := []struct {
		name   string
		gemini string
		apiKey string
		want   string
	}{
		{name: "gemini key", gemini: "g-key", want: "g-key"},
		{name: "fallback key", apiKey: "a-key", want: "a-key"},
		{name: "gemini key wins", gemini: "g-key", apiKey: "a-key", want: "g-key"},
		{name: "none", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GEMINI_API_KEY", tt.gemini)
			t.Setenv("API_KEY", tt.apiKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Gemini.APIKey != tt.want {
				t.Errorf("APIKey = %q, want %q", cfg.Gemini.APIKey, tt.want)
			}
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DINNER_ADDR", ":9000")
	t.Setenv("DINNER_AI_BACKEND", "vertex")
	t.Setenv("DINNER_GCP_PROJECT", "dinner-prod")
	t.Setenv("DINNER_LOCATION_SOURCE", "static")
	t.Setenv("DINNER_STATIC_LAT", "25.03")
	t.Setenv("DINNER_STATIC_LNG", "121.56")
	t.Setenv("DINNER_SESSION_TTL", "30m")
	t.Setenv("DINNER_MAX_SESSIONS", "10")
	t.Setenv("DINNER_MOOD_RATE", "0.5")
	t.Setenv("DINNER_MOOD_BURST", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %s, want :9000", cfg.Addr)
	}
	if cfg.Gemini.Backend != gemini.BackendVertex || cfg.Gemini.Project != "dinner-prod" {
		t.Errorf("Gemini = %+v, want vertex/dinner-prod", cfg.Gemini)
	}
	if cfg.Gemini.Location != DefaultGCPLocation {
		t.Errorf("Location = %s, want %s", cfg.Gemini.Location, DefaultGCPLocation)
	}
	want := geo.Coordinate{Latitude: 25.03, Longitude: 121.56}
	if cfg.StaticLocation != want {
		t.Errorf("StaticLocation = %v, want %v", cfg.StaticLocation, want)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.MaxSessions != 10 || cfg.MoodRate != 0.5 || cfg.MoodBurst != 1 {
		t.Errorf("limits = %d/%v/%d, want 10/0.5/1", cfg.MaxSessions, cfg.MoodRate, cfg.MoodBurst)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "unknown backend",
			env:     map[string]string{"DINNER_AI_BACKEND": "openai"},
			wantErr: ErrInvalidBackend,
		},
		{
			name:    "vertex without project",
			env:     map[string]string{"DINNER_AI_BACKEND": "vertex"},
			wantErr: ErrMissingProject,
		},
		{
			name:    "unknown location source",
			env:     map[string]string{"DINNER_LOCATION_SOURCE": "gps"},
			wantErr: ErrInvalidLocationSource,
		},
		{
			name:    "static without coordinate",
			env:     map[string]string{"DINNER_LOCATION_SOURCE": "static", "DINNER_STATIC_LAT": "25.03"},
			wantErr: ErrMissingStaticCoordinate,
		},
		{
			name:    "zero mood burst",
			env:     map[string]string{"DINNER_MOOD_BURST": "0"},
			wantErr: ErrNotPositive,
		},
		{
			name:    "zero mood rate",
			env:     map[string]string{"DINNER_MOOD_RATE": "0"},
			wantErr: ErrNotPositive,
		},
		{
			name:    "negative mood rate",
			env:     map[string]string{"DINNER_MOOD_RATE": "-1"},
			wantErr: ErrNotPositive,
		},
		{
			name:    "zero max sessions",
			env:     map[string]string{"DINNER_MAX_SESSIONS": "0"},
			wantErr: ErrNotPositive,
		},
		{
			name:    "negative session ttl",
			env:     map[string]string{"DINNER_SESSION_TTL": "-1h"},
			wantErr: ErrNotPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		key   string
		value string
		extra map[string]string
	}{
		{key: "DINNER_SESSION_TTL", value: "forever"},
		{key: "DINNER_MAX_SESSIONS", value: "many"},
		{key: "DINNER_MOOD_RATE", value: "fast"},
		{key: "DINNER_MOOD_BURST", value: "1.5"},
		{key: "DINNER_STATIC_LAT", value: "north", extra: map[string]string{"DINNER_LOCATION_SOURCE": "static", "DINNER_STATIC_LNG": "121.56"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.extra {
				t.Setenv(k, v)
			}
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q error = nil", tt.key, tt.value)
			}
		})
	}
}
