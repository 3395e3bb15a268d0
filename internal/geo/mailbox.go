package geo

import (
	"context"
	"fmt"
)

// Browser Geolocation API error codes.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// PositionError mirrors a browser GeolocationPositionError.
type PositionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Report is the outcome of a getCurrentPosition call as posted by the page.
type Report struct {
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Error       *PositionError `json:"error,omitempty"`
	Unsupported bool           `json:"unsupported,omitempty"` // navigator.geolocation is missing
}

// Result converts the report into a coordinate or a classified error.
func (r Report) Result() (Coordinate, error) {
	switch {
	case r.Unsupported:
		return Coordinate{}, ErrCapabilityUnavailable
	case r.Error == nil:
		return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}, nil
	case r.Error.Code == CodePermissionDenied:
		return Coordinate{}, fmt.Errorf("%w: %s", ErrPermissionDenied, r.Error.Message)
	case r.Error.Code == CodeTimeout:
		return Coordinate{}, fmt.Errorf("%w: browser timeout: %s", ErrUnavailable, r.Error.Message)
	default:
		return Coordinate{}, fmt.Errorf("%w: code %d: %s", ErrUnavailable, r.Error.Code, r.Error.Message)
	}
}

// Mailbox is a Sensor fed by reports posted from the browser.
// It holds at most one unread report.
type Mailbox struct {
	ch chan Report
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan Report, 1)}
}

// Deliver stores a report, replacing any unread one.
func (m *Mailbox) Deliver(r Report) {
	for {
		select {
		case m.ch <- r:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

// Drain discards an unread report, if any.
func (m *Mailbox) Drain() {
	select {
	case <-m.ch:
	default:
	}
}

// Position waits for the next report or for ctx to end.
func (m *Mailbox) Position(ctx context.Context, _ Options) (Coordinate, error) {
	select {
	case r := <-m.ch:
		return r.Result()
	case <-ctx.Done():
		return Coordinate{}, ctx.Err()
	}
}
