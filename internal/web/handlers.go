package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/justestif/go-dinner-vibe/internal/flow"
	"github.com/justestif/go-dinner-vibe/internal/geo"
	"github.com/justestif/go-dinner-vibe/internal/mood"
)

// maxReportBytes bounds the geolocation report body.
const maxReportBytes = 4 << 10

// errRateLimited is returned when a session asks for recommendations too often.
var errRateLimited = errors.New("too many recommendation requests")

// errReportRequired is returned when browser mode receives no geolocation report.
var errReportRequired = errors.New("geolocation report required")

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	sessions  *SessionStore
	templates *Templates
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessions *SessionStore, templates *Templates) *Handlers {
	return &Handlers{
		sessions:  sessions,
		templates: templates,
	}
}

// Home renders the page for the current step (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	data := HomePageData{
		PageData: PageData{
			Title:       "Dinner Vibe",
			CurrentPath: r.URL.Path,
		},
		ViewData: newViewData(sess.Machine.State(), sess.Mailbox() != nil),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "home", data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("rendering home")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// View renders the state-dependent fragment of the page (GET /view).
func (h *Handlers) View(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	data := newViewData(sess.Machine.State(), sess.Mailbox() != nil)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.RenderPartial(w, "view", data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("rendering view")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// Start begins location acquisition (POST /start).
// In browser mode the body is the JSON geolocation report.
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var report geo.Report
	mb := sess.Mailbox()
	if mb != nil {
		var err error
		if report, err = decodeReport(r); err != nil {
			h.fail(w, r, fmt.Errorf("decoding report: %w", err))
			return
		}
	}

	if err := sess.Machine.Start(r.Context()); err != nil {
		h.fail(w, r, fmt.Errorf("starting: %w", err))
		return
	}

	// Only the request that started acquisition feeds the mailbox.
	if mb != nil {
		mb.Deliver(report)
	}

	h.respond(w, r, sess)
}

// SelectMood requests recommendations for a mood (POST /mood).
func (h *Handlers) SelectMood(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	id := r.FormValue("mood")
	if _, err := mood.Lookup(id); err != nil {
		h.fail(w, r, err)
		return
	}

	if !sess.AllowMood() {
		h.fail(w, r, errRateLimited)
		return
	}

	if err := sess.Machine.SelectMood(r.Context(), id); err != nil {
		h.fail(w, r, fmt.Errorf("selecting mood: %w", err))
		return
	}

	h.respond(w, r, sess)
}

// Reset returns to mood selection (POST /reset).
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Machine.Reset(); err != nil {
		h.fail(w, r, fmt.Errorf("resetting: %w", err))
		return
	}

	h.respond(w, r, sess)
}

// Retry returns from an error to the landing step (POST /retry).
func (h *Handlers) Retry(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if mb := sess.Mailbox(); mb != nil {
		mb.Drain()
	}

	if err := sess.Machine.Retry(); err != nil {
		h.fail(w, r, fmt.Errorf("retrying: %w", err))
		return
	}

	h.respond(w, r, sess)
}

// State returns the session snapshot as JSON (GET /state).
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Machine.State())
}

// WebSocket pushes snapshots on every transition (GET /ws).
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Hub.Serve(w, r, sess.Machine.State); err != nil {
		// The upgrader has already replied.
		hlog.FromRequest(r).Debug().Err(err).Msg("websocket closed")
	}
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := h.sessions.Get(w, r)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("loading session")
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// respond answers a successful action with the new snapshot for script
// clients, or a redirect back to the page for plain form posts.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, sess *Session) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, sess.Machine.State())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// fail maps an action error to a status code.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	http.Error(w, http.StatusText(status), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, flow.ErrInvalidTransition), errors.Is(err, flow.ErrNoCoordinate):
		return http.StatusConflict
	case errors.Is(err, mood.ErrUnknownMood), errors.Is(err, errReportRequired):
		return http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, flow.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func decodeReport(r *http.Request) (geo.Report, error) {
	var report geo.Report

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return report, errReportRequired
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxReportBytes))
	if err := dec.Decode(&report); err != nil {
		return report, fmt.Errorf("%w: %v", errReportRequired, err)
	}
	return report, nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
