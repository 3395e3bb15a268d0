// Command dinner-vibe runs the Dinner Vibe web application.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/justestif/go-dinner-vibe/internal/config"
	"github.com/justestif/go-dinner-vibe/internal/gemini"
	"github.com/justestif/go-dinner-vibe/internal/geo"
	"github.com/justestif/go-dinner-vibe/internal/logging"
	"github.com/justestif/go-dinner-vibe/internal/web"
	webfs "github.com/justestif/go-dinner-vibe/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	if cfg.Gemini.Backend == gemini.BackendGemini && cfg.Gemini.APIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY is not set; recommendations will fail until it is configured")
	}

	recommender, err := gemini.NewClient(ctx, cfg.Gemini)
	if err != nil {
		return fmt.Errorf("creating recommendation client: %w", err)
	}

	templates, err := webfs.Templates()
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := webfs.Static()
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	secret, err := sessionSecret(cfg.SessionSecret)
	if err != nil {
		return err
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:        cfg.Addr,
		TemplatesFS: templates,
		StaticFS:    static,
		Recommender: recommender,
		NewSensor:   sensorFactory(cfg),
		Session: web.SessionConfig{
			Secret:      secret,
			TTL:         cfg.SessionTTL,
			MaxSessions: cfg.MaxSessions,
			MoodRate:    cfg.MoodRate,
			MoodBurst:   cfg.MoodBurst,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	logger.Info().
		Str("backend", cfg.Gemini.Backend).
		Str("model", cfg.Gemini.Model).
		Str("location", cfg.LocationSource).
		Msg("configured")

	return server.Run(ctx)
}

// sensorFactory selects how each session acquires its position.
func sensorFactory(cfg *config.Config) web.SensorFactory {
	switch cfg.LocationSource {
	case config.LocationIP:
		lookup := geo.NewIPLocator(cfg.IPLookupURL)
		return func(r *http.Request) geo.Sensor {
			return lookup.Sensor(clientIP(r))
		}
	case config.LocationStatic:
		c := geo.Static(cfg.StaticLocation)
		return func(*http.Request) geo.Sensor {
			return c
		}
	default:
		return func(*http.Request) geo.Sensor {
			return geo.NewMailbox()
		}
	}
}

// clientIP returns the request's remote address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sessionSecret returns the configured cookie key, or a random one that
// invalidates sessions on restart.
func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating session secret: %w", err)
	}
	return b, nil
}
