package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/justestif/go-dinner-vibe/internal/flow"
	"github.com/justestif/go-dinner-vibe/internal/geo"
)

const (
	sessionCookieName = "dinner_vibe"
	sessionIDKey      = "id"
)

// SensorFactory returns the positioning capability for a new session.
type SensorFactory func(r *http.Request) geo.Sensor

// Session is one visitor's flow with its supporting resources.
type Session struct {
	ID        string
	Machine   *flow.Machine
	Sensor    geo.Sensor
	Hub       *Hub
	CreatedAt time.Time

	limiter *rate.Limiter
}

// Mailbox returns the browser report mailbox, or nil when the position is
// acquired server-side.
func (s *Session) Mailbox() *geo.Mailbox {
	mb, _ := s.Sensor.(*geo.Mailbox)
	return mb
}

// AllowMood reports whether another recommendation request is allowed now.
func (s *Session) AllowMood() bool {
	return s.limiter.Allow()
}

func (s *Session) close() {
	s.Machine.Close()
	s.Hub.Close()
}

// SessionConfig configures a SessionStore.
type SessionConfig struct {
	Secret      []byte
	TTL         time.Duration
	MaxSessions int
	MoodRate    float64 // recommendation requests per minute
	MoodBurst   int
	NewSensor   SensorFactory
	Recommender flow.Recommender
	Logger      zerolog.Logger
}

// SessionStore keeps sessions in a bounded in-memory cache keyed by a signed cookie.
// Evicted or expired sessions are closed.
type SessionStore struct {
	mu      sync.Mutex
	cookies *sessions.CookieStore
	cache   *expirable.LRU[string, *Session]
	cfg     SessionConfig
}

// NewSessionStore creates a session store.
func NewSessionStore(cfg SessionConfig) *SessionStore {
	cookies := sessions.NewCookieStore(cfg.Secret)
	cookies.MaxAge(int(cfg.TTL.Seconds()))
	cookies.Options.Path = "/"
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode

	onEvict := func(id string, s *Session) {
		cfg.Logger.Debug().Str("session_id", id).Msg("session evicted")
		go s.close()
	}

	return &SessionStore{
		cookies: cookies,
		cache:   expirable.NewLRU[string, *Session](cfg.MaxSessions, onEvict, cfg.TTL),
		cfg:     cfg,
	}
}

// Get returns the request's session, creating it and setting the cookie when needed.
func (s *SessionStore) Get(w http.ResponseWriter, r *http.Request) (*Session, error) {
	// A cookie that fails verification yields a fresh session.
	cs, _ := s.cookies.Get(r, sessionCookieName)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := cs.Values[sessionIDKey].(string); ok {
		if sess, ok := s.cache.Get(id); ok {
			return sess, nil
		}
	}

	sess := s.newSession(r)
	s.cache.Add(sess.ID, sess)

	cs.Values[sessionIDKey] = sess.ID
	if err := cs.Save(r, w); err != nil {
		s.cache.Remove(sess.ID)
		return nil, err
	}

	s.cfg.Logger.Debug().Str("session_id", sess.ID).Msg("session created")
	return sess, nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.cache.Len()
}

// Close closes every session.
func (s *SessionStore) Close() {
	for _, sess := range s.cache.Values() {
		sess.close()
	}
}

func (s *SessionStore) newSession(r *http.Request) *Session {
	id := uuid.NewString()
	logger := s.cfg.Logger.With().Str("session_id", id).Logger()

	var sensor geo.Sensor
	if s.cfg.NewSensor != nil {
		sensor = s.cfg.NewSensor(r)
	}
	hub := NewHub(logger)

	machine := flow.New(
		geo.NewLocator(sensor),
		s.cfg.Recommender,
		flow.WithLogger(logger),
		flow.WithObserver(hub.Broadcast),
	)

	return &Session{
		ID:        id,
		Machine:   machine,
		Sensor:    sensor,
		Hub:       hub,
		CreatedAt: time.Now(),
		limiter:   rate.NewLimiter(rate.Limit(s.cfg.MoodRate/60), s.cfg.MoodBurst),
	}
}
