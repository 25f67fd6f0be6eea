package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/towops/towops/pkg/model"
)

type EventKind string

const (
	EventCall           EventKind = "call"
	EventUnit           EventKind = "unit"
	EventRecommendation EventKind = "recommendation"
	EventAssign         EventKind = "assign"
	EventTracking       EventKind = "tracking"
)

// Event describes one applied change or dispatch decision.
type Event struct {
	ID             string
	Kind           EventKind
	Time           time.Time
	CallID         string
	UnitID         string
	Call           *model.Call
	Unit           *model.Unit
	Assignment     *model.Assignment
	Recommendation *Recommendation
}

func newEvent(kind EventKind, ts time.Time, callID, unitID string) Event {
	return Event{
		ID:     uuid.NewString(),
		Kind:   kind,
		Time:   ts,
		CallID: callID,
		UnitID: unitID,
	}
}
