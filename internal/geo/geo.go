// Package geo acquires the user's geographic position from a host positioning capability.
package geo

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Classified acquisition failures.
var (
	// ErrCapabilityUnavailable is returned when the host has no positioning capability at all.
	ErrCapabilityUnavailable = errors.New("positioning capability unavailable")

	// ErrPermissionDenied is returned when the user or OS refuses access to the position.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnavailable is returned on timeout or any other sensor failure.
	ErrUnavailable = errors.New("location unavailable")
)

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats the coordinate as "lat,lng" using the shortest exact decimal form.
func (c Coordinate) String() string {
	return FormatDegrees(c.Latitude) + "," + FormatDegrees(c.Longitude)
}

// FormatDegrees formats a degree value without rounding or trailing zeros.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Options configures a single position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// DefaultOptions requests a fresh, high-accuracy fix with a 10 second deadline.
var DefaultOptions = Options{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaximumAge:   0,
}

// Sensor is a host positioning capability.
// Implementations honor ctx cancellation and may return any error;
// Locator classifies it.
type Sensor interface {
	Position(ctx context.Context, opts Options) (Coordinate, error)
}

// SensorFunc adapts a function to the Sensor interface.
type SensorFunc func(ctx context.Context, opts Options) (Coordinate, error)

// Position calls f(ctx, opts).
func (f SensorFunc) Position(ctx context.Context, opts Options) (Coordinate, error) {
	return f(ctx, opts)
}

// Static is a sensor that always reports the same coordinate.
type Static Coordinate

// Position returns the fixed coordinate.
func (s Static) Position(_ context.Context, _ Options) (Coordinate, error) {
	return Coordinate(s), nil
}
