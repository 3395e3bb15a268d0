package geo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Locator performs single-attempt position acquisition against a Sensor.
type Locator struct {
	sensor Sensor
	opts   Options
}

// Option configures a Locator.
type Option func(*Locator)

// WithTimeout overrides the acquisition deadline.
func WithTimeout(d time.Duration) Option {
	return func(l *Locator) {
		if d > 0 {
			l.opts.Timeout = d
		}
	}
}

// NewLocator creates a Locator for the given sensor.
// A nil sensor means the host has no positioning capability.
func NewLocator(sensor Sensor, opts ...Option) *Locator {
	l := &Locator{
		sensor: sensor,
		opts:   DefaultOptions,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Options returns the request options passed to the sensor.
func (l *Locator) Options() Options {
	return l.opts
}

// Acquire requests the current position once. No retries are attempted.
//
// Errors always wrap one of ErrCapabilityUnavailable, ErrPermissionDenied or ErrUnavailable.
// A successful coordinate is returned exactly as the sensor reported it.
func (l *Locator) Acquire(ctx context.Context) (Coordinate, error) {
	if l.sensor == nil {
		return Coordinate{}, ErrCapabilityUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	c, err := l.sensor.Position(ctx, l.opts)
	if err != nil {
		return Coordinate{}, classify(err)
	}
	return c, nil
}

// classify maps a sensor error onto the acquisition taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrCapabilityUnavailable),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: timed out", ErrUnavailable)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
