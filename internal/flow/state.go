package flow

import (
	"fmt"

	"github.com/justestif/go-dinner-vibe/internal/gemini"
	"github.com/justestif/go-dinner-vibe/internal/geo"
	"github.com/justestif/go-dinner-vibe/internal/mood"
)

// Step is one of the mutually exclusive session steps.
type Step int

const (
	StepLanding Step = iota
	StepLocationPermission
	StepMoodSelection
	StepLoading
	StepResults
	StepError
)

var stepNames = [...]string{
	StepLanding:            "LANDING",
	StepLocationPermission: "LOCATION_PERMISSION",
	StepMoodSelection:      "MOOD_SELECTION",
	StepLoading:            "LOADING",
	StepResults:            "RESULTS",
	StepError:              "ERROR",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a step name.
func (s *Step) UnmarshalText(text []byte) error {
	for i, name := range stepNames {
		if name == string(text) {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", text)
}

// ErrorKind classifies the failure behind an ERROR step.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorCapabilityUnavailable
	ErrorPermissionDenied
	ErrorLocationUnavailable
	ErrorService
)

var errorKindNames = [...]string{
	ErrorNone:                  "",
	ErrorCapabilityUnavailable: "capability_unavailable",
	ErrorPermissionDenied:      "permission_denied",
	ErrorLocationUnavailable:   "location_unavailable",
	ErrorService:               "service",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// MarshalText encodes the kind by name.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	for i, name := range errorKindNames {
		if name == string(text) {
			*k = ErrorKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}

// Terminal reports whether retrying cannot help. The retry action is still offered.
func (k ErrorKind) Terminal() bool {
	return k == ErrorCapabilityUnavailable
}

// User-facing error messages. Causes are logged, never shown.
const (
	MsgCapabilityUnavailable = "Your browser does not support location services."
	MsgPermissionDenied      = "Please allow location access so we can find restaurants near you."
	MsgLocationFailed        = "We couldn't get your location."
	MsgServiceFailed         = "The AI connection failed. Please try again later."
)

// State is an immutable snapshot of a session.
//
// Result is set only in StepResults and ErrorMessage only in StepError.
// Coordinate is set from StepMoodSelection onwards.
type State struct {
	Version      uint64          `json:"version"`
	Step         Step            `json:"step"`
	Coordinate   *geo.Coordinate `json:"coordinate,omitempty"`
	Mood         *mood.Preset    `json:"mood,omitempty"`
	Result       *gemini.Result  `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ErrorKind    ErrorKind       `json:"error_kind,omitempty"`
}
