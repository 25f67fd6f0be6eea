package model

import (
	"fmt"
)

// Status is the lifecycle stage of an assignment.
type Status string

const (
	StatusAssigned Status = "assigned"
	StatusEnroute  Status = "enroute"
	StatusOnScene  Status = "on_scene"
	StatusComplete Status = "complete"
)

var transitions = map[Status]Status{
	StatusAssigned: StatusEnroute,
	StatusEnroute:  StatusOnScene,
	StatusOnScene:  StatusComplete,
}

var ErrUnknownStatus = fmt.Errorf("unknown status")

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusAssigned, StatusEnroute, StatusOnScene, StatusComplete:
		return st, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether the assignment still needs tracking.
func (s Status) IsActive() bool {
	switch s {
	case StatusAssigned, StatusEnroute, StatusOnScene:
		return true
	}

	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusComplete
}

// CanTransition allows the forward step of the lifecycle and a same-status refresh.
func (s Status) CanTransition(to Status) bool {
	if s == to {
		return !s.IsTerminal()
	}

	return transitions[s] == to
}

type CallStatus string

const (
	CallNew      CallStatus = "new"
	CallAssigned CallStatus = "assigned"
	CallComplete CallStatus = "complete"
)
