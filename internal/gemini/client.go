// Package gemini recommends restaurants through the Gemini API with Google Maps grounding.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/justestif/go-dinner-vibe/internal/geo"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Supported backends.
const (
	BackendGemini = "gemini" // Gemini API with an API key
	BackendVertex = "vertex" // Vertex AI with application default credentials
)

// Sentinel errors.
var (
	// ErrMissingAPIKey is returned when no Gemini API key is configured.
	ErrMissingAPIKey = errors.New("missing Gemini API key")

	// ErrMalformedResponse is returned when a response cannot be read into a Response.
	ErrMalformedResponse = errors.New("malformed response")
)

// ServiceError reports any failure to obtain a recommendation.
type ServiceError struct {
	Op         string // Operation that failed
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gemini %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError wraps err, taking the status code from a genai API error.
func newServiceError(op string, err error) *ServiceError {
	se := &ServiceError{Op: op, Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		se.StatusCode = apiErr.Code
	}
	return se
}

// Config holds recommendation client configuration.
type Config struct {
	Backend         string // BackendGemini (default) or BackendVertex
	APIKey          string // Gemini API key; may be empty until the first request
	Model           string
	Project         string // Vertex only
	Location        string // Vertex only
	PersonaLanguage string
}

// contentGenerator is the subset of genai.Models used by the client.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Option configures the SDK client built by NewClient.
type Option func(*genai.ClientConfig)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cc *genai.ClientConfig) {
		cc.HTTPClient = c
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(cc *genai.ClientConfig) {
		cc.HTTPOptions.BaseURL = u
	}
}

// Client fetches map-grounded restaurant recommendations.
// Each Fetch makes exactly one outbound call; nothing is cached or retried.
type Client struct {
	model   string
	persona string
	models  contentGenerator // nil when the Gemini backend has no API key
}

// NewClient creates a client for the configured backend.
//
// With the Gemini backend and no API key the client is still created; every
// Fetch then fails with ErrMissingAPIKey without sending a request.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	c := &Client{
		model:   model,
		persona: BuildPersona(cfg.PersonaLanguage),
	}

	cc := &genai.ClientConfig{
		// No client timeout: the request relies on the transport and its context.
		HTTPClient: &http.Client{},
	}

	switch cfg.Backend {
	case BackendVertex:
		if cfg.Project == "" || cfg.Location == "" {
			return nil, errors.New("vertex backend requires a GCP project and location")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		// Vertex authenticates through application default credentials.
		cc.HTTPClient = nil
	case BackendGemini, "":
		if cfg.APIKey == "" {
			return c, nil
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	c.models = client.Models

	return c, nil
}

// Fetch asks for 4-5 nearby restaurants matching the mood fragment.
// All failures are returned as *ServiceError.
func (c *Client) Fetch(ctx context.Context, coord geo.Coordinate, moodFragment string) (*Result, error) {
	const op = "generate content"

	if c.models == nil {
		return nil, &ServiceError{Op: op, Err: ErrMissingAPIKey}
	}

	contents, cfg := buildRequest(coord, moodFragment, c.persona)

	res, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, newServiceError(op, err)
	}

	resp, err := fromGenAI(res)
	if err != nil {
		return nil, &ServiceError{Op: op, Err: err}
	}

	result := Normalize(resp)

	zerolog.Ctx(ctx).Debug().
		Str("model", c.model).
		Int("places", len(result.Places)).
		Msg("recommendation received")

	return result, nil
}
