// Package flow drives one dinner-recommendation session from landing to results.
package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/justestif/go-dinner-vibe/internal/gemini"
	"github.com/justestif/go-dinner-vibe/internal/geo"
	"github.com/justestif/go-dinner-vibe/internal/mood"
)

// Sentinel errors.
var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current step.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNoCoordinate is returned when a mood is selected before a location is known.
	ErrNoCoordinate = errors.New("no coordinate")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// Locator acquires the device position.
type Locator interface {
	Acquire(ctx context.Context) (geo.Coordinate, error)
}

// Recommender fetches restaurant recommendations.
type Recommender interface {
	Fetch(ctx context.Context, coord geo.Coordinate, moodFragment string) (*gemini.Result, error)
}

// Machine owns the session state and runs its asynchronous operations.
//
// Each operation is tagged with a generation. Reset, Retry and Close start a new
// generation and cancel the running operation; late completions from an older
// generation are discarded.
type Machine struct {
	locator     Locator
	recommender Recommender
	logger      zerolog.Logger
	observer    func(State)

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger used for transitions and failure causes.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithObserver registers a function called with every new state.
// It runs outside the machine lock and must not block for long.
func WithObserver(fn func(State)) Option {
	return func(m *Machine) {
		m.observer = fn
	}
}

// New creates a machine in StepLanding.
func New(locator Locator, recommender Recommender, opts ...Option) *Machine {
	m := &Machine{
		locator:     locator,
		recommender: recommender,
		logger:      zerolog.Nop(),
		state:       State{Step: StepLanding},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start moves from LANDING to LOCATION_PERMISSION and acquires the position.
// ctx supplies values such as the logger; its cancellation does not stop the acquisition.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	if err := m.checkLocked(StepLanding); err != nil {
		m.mu.Unlock()
		return err
	}

	opCtx, gen := m.beginLocked(ctx)
	snap := m.setLocked(State{Step: StepLocationPermission})
	m.wg.Add(1)
	m.mu.Unlock()

	m.notify(snap)

	go m.acquire(opCtx, gen)
	return nil
}

func (m *Machine) acquire(ctx context.Context, gen uint64) {
	defer m.wg.Done()

	coord, err := m.locator.Acquire(ctx)

	m.complete(gen, func(prev State) State {
		if err != nil {
			kind, msg := classifyLocation(err)
			m.logger.Warn().Err(err).Str("kind", kind.String()).Msg("location acquisition failed")
			return State{Step: StepError, ErrorMessage: msg, ErrorKind: kind}
		}
		m.logger.Debug().Msg("location acquired")
		return State{Step: StepMoodSelection, Coordinate: &coord}
	})
}

// SelectMood moves from MOOD_SELECTION to LOADING and fetches recommendations.
// Without a stored coordinate the call is ignored and returns ErrNoCoordinate.
func (m *Machine) SelectMood(ctx context.Context, moodID string) error {
	preset, err := mood.Lookup(moodID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.state.Coordinate == nil {
		m.mu.Unlock()
		return ErrNoCoordinate
	}
	if err := m.checkLocked(StepMoodSelection); err != nil {
		m.mu.Unlock()
		return err
	}

	coord := *m.state.Coordinate
	opCtx, gen := m.beginLocked(ctx)
	snap := m.setLocked(State{Step: StepLoading, Coordinate: m.state.Coordinate, Mood: &preset})
	m.wg.Add(1)
	m.mu.Unlock()

	m.notify(snap)

	go m.fetch(opCtx, gen, coord, preset)
	return nil
}

func (m *Machine) fetch(ctx context.Context, gen uint64, coord geo.Coordinate, preset mood.Preset) {
	defer m.wg.Done()

	result, err := m.recommender.Fetch(ctx, coord, preset.PromptFragment)

	m.complete(gen, func(prev State) State {
		if err != nil {
			m.logger.Error().Err(err).Str("mood", preset.ID).Msg("recommendation failed")
			return State{
				Step:         StepError,
				Coordinate:   prev.Coordinate,
				Mood:         prev.Mood,
				ErrorMessage: MsgServiceFailed,
				ErrorKind:    ErrorService,
			}
		}
		m.logger.Info().Str("mood", preset.ID).Int("places", len(result.Places)).Msg("recommendation ready")
		return State{Step: StepResults, Coordinate: prev.Coordinate, Mood: prev.Mood, Result: result}
	})
}

// Reset returns to MOOD_SELECTION keeping the coordinate. It is allowed from
// RESULTS and from LOADING, where the in-flight fetch is superseded.
func (m *Machine) Reset() error {
	m.mu.Lock()
	if err := m.checkLocked(StepResults, StepLoading); err != nil {
		m.mu.Unlock()
		return err
	}

	m.supersedeLocked()
	snap := m.setLocked(State{Step: StepMoodSelection, Coordinate: m.state.Coordinate})
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

// Retry returns from ERROR to LANDING. The coordinate is discarded so the
// location is acquired again.
func (m *Machine) Retry() error {
	m.mu.Lock()
	if err := m.checkLocked(StepError); err != nil {
		m.mu.Unlock()
		return err
	}

	m.supersedeLocked()
	snap := m.setLocked(State{Step: StepLanding})
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

// Close cancels any running operation and waits for it to return.
// The machine rejects further operations.
func (m *Machine) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		m.supersedeLocked()
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// Wait blocks until no operation is running. It does not stop operations and
// exists for tests that need a settled state; production code uses Close.
func (m *Machine) Wait() {
	m.wg.Wait()
}

func (m *Machine) checkLocked(allowed ...Step) error {
	if m.closed {
		return ErrClosed
	}
	for _, s := range allowed {
		if m.state.Step == s {
			return nil
		}
	}
	return ErrInvalidTransition
}

// beginLocked starts a new generation with a context detached from the caller's cancellation.
func (m *Machine) beginLocked(ctx context.Context) (context.Context, uint64) {
	m.supersedeLocked()
	opCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	return opCtx, m.gen
}

func (m *Machine) supersedeLocked() {
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Machine) setLocked(next State) State {
	next.Version = m.state.Version + 1
	from := m.state.Step
	m.state = next
	m.logger.Debug().Stringer("from", from).Stringer("to", next.Step).Msg("transition")
	return next
}

// complete applies an operation's outcome if its generation is still current.
func (m *Machine) complete(gen uint64, apply func(prev State) State) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		m.logger.Debug().Uint64("generation", gen).Msg("discarding stale result")
		return
	}

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	snap := m.setLocked(apply(m.state))
	m.mu.Unlock()

	m.notify(snap)
}

func (m *Machine) notify(s State) {
	if m.observer != nil {
		m.observer(s)
	}
}

// classifyLocation maps an acquisition error to its kind and message.
func classifyLocation(err error) (ErrorKind, string) {
	switch {
	case errors.Is(err, geo.ErrCapabilityUnavailable):
		return ErrorCapabilityUnavailable, MsgCapabilityUnavailable
	case errors.Is(err, geo.ErrPermissionDenied):
		return ErrorPermissionDenied, MsgPermissionDenied
	default:
		return ErrorLocationUnavailable, MsgLocationFailed
	}
}
