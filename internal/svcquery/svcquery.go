// Package svcquery turns the text listing printed by `sc queryex` into
// typed service records.
package svcquery

import (
	"errors"
	"fmt"
)

// State is the numeric service state reported in the STATE field.
type State int

// Service states as reported by the service control manager.
const (
	StateStopped         State = 1
	StateStartPending    State = 2
	StateStopPending     State = 3
	StateRunning         State = 4
	StateContinuePending State = 5
	StatePausePending    State = 6
	StatePaused          State = 7
)

var stateLabels = map[State]string{
	StateStopped:         "STOPPED",
	StateStartPending:    "START_PENDING",
	StateStopPending:     "STOP_PENDING",
	StateRunning:         "RUNNING",
	StateContinuePending: "CONTINUE_PENDING",
	StatePausePending:    "PAUSE_PENDING",
	StatePaused:          "PAUSED",
}

// ErrUnknownStateCode is returned for a state code outside 1..7.
var ErrUnknownStateCode = errors.New("svcquery: unknown state code")

// UnknownStateError carries the code that could not be translated.
type UnknownStateError struct {
	Code int
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("svcquery: unknown state code %d", e.Code)
}

func (e *UnknownStateError) Unwrap() error {
	return ErrUnknownStateCode
}

// Label returns the display label, e.g. "RUNNING".
func (s State) Label() (string, error) {
	label, ok := stateLabels[s]
	if !ok {
		return "", &UnknownStateError{Code: int(s)}
	}
	return label, nil
}

// Known reports whether s is one of the seven defined states.
func (s State) Known() bool {
	_, ok := stateLabels[s]
	return ok
}

// String implements fmt.Stringer. Unknown codes render as UNKNOWN(n) so they
// are never mistaken for a real state.
func (s State) String() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// Translate maps a raw state code to its label.
func Translate(code int) (string, error) {
	return State(code).Label()
}

// ServiceRecord describes one service from an enumeration listing.
type ServiceRecord struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	StateCode   State  `json:"state"`
	ProcessID   int    `json:"pid"`
}

// IsActive returns true if the service is backed by a running process.
func (r ServiceRecord) IsActive() bool {
	return r.ProcessID > 0
}
