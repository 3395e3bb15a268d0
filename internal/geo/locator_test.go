package geo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAcquire(t *testing.T) {
	errSensor := errors.New("gps hardware fault")

	tests := []struct {
		name    string
		sensor  Sensor
		want    Coordinate
		wantErr error
	}{
		{
			name:   "success returns exact coordinate",
			sensor: Static{Latitude: 25.033964, Longitude: 121.564468},
			want:   Coordinate{Latitude: 25.033964, Longitude: 121.564468},
		},
		{
			name:   "degenerate zero coordinate accepted",
			sensor: Static{},
			want:   Coordinate{},
		},
		{
			name:    "nil sensor is capability unavailable",
			sensor:  nil,
			wantErr: ErrCapabilityUnavailable,
		},
		{
			name: "permission denied passes through",
			sensor: SensorFunc(func(context.Context, Options) (Coordinate, error) {
				return Coordinate{}, ErrPermissionDenied
			}),
			wantErr: ErrPermissionDenied,
		},
		{
			name: "other sensor error is unavailable",
			sensor: SensorFunc(func(context.Context, Options) (Coordinate, error) {
				return Coordinate{}, errSensor
			}),
			wantErr: ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := NewLocator(tt.sensor)

			got, err := loc.Acquire(context.Background())

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Acquire() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != tt.want {
				t.Errorf("Acquire() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAcquire_Timeout(t *testing.T) {
	blocking := SensorFunc(func(ctx context.Context, _ Options) (Coordinate, error) {
		<-ctx.Done()
		return Coordinate{}, ctx.Err()
	})

	loc := NewLocator(blocking, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := loc.Acquire(context.Background())

	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Acquire() error = %v, want ErrUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Acquire() took %v, deadline not enforced", elapsed)
	}
}

func TestAcquire_PassesOptions(t *testing.T) {
	var got Options
	sensor := SensorFunc(func(_ context.Context, opts Options) (Coordinate, error) {
		got = opts
		return Coordinate{}, nil
	})

	if _, err := NewLocator(sensor).Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if got != DefaultOptions {
		t.Errorf("sensor received %+v, want %+v", got, DefaultOptions)
	}
	if got.Timeout != 10*time.Second {
		t.Errorf("default timeout = %v, want 10s", got.Timeout)
	}
}

func TestCoordinateString(t *testing.T) {
	c := Coordinate{Latitude: 25.03, Longitude: 121.56}
	if got := c.String(); got != "25.03,121.56" {
		t.Errorf("String() = %s, want 25.03,121.56", got)
	}
}
