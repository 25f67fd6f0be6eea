package model

import (
	"fmt"
	"time"
)

// Assignment binds one call to one unit. Start and Destination are copies taken
// at assign time and are not touched by later call or unit reports.
type Assignment struct {
	CallID            string
	UnitID            string
	Status            Status
	Progress          int
	Start             Location
	Destination       Location
	AssignedAt        time.Time
	LastUpdated       time.Time
	EtaMinutes        *int
	DistanceRemaining *float64
}

func (a Assignment) Key() string {
	return a.CallID
}

func (a Assignment) String() string {
	return fmt.Sprintf("assignment %s -> %s %s %d%%", a.CallID, a.UnitID, a.Status, a.Progress)
}

// TotalDistance is the straight-line length of the trip as planned at assign time.
func (a Assignment) TotalDistance() float64 {
	return a.Start.DistTo(a.Destination)
}

func (a Assignment) DTO() *WebAssignment {
	return &WebAssignment{
		CallID:            a.CallID,
		UnitID:            a.UnitID,
		Status:            string(a.Status),
		Progress:          a.Progress,
		StartLocation:     a.Start,
		Destination:       a.Destination,
		AssignedAt:        Epoch(a.AssignedAt),
		LastUpdated:       Epoch(a.LastUpdated),
		EstimatedArrival:  a.EtaMinutes,
		DistanceRemaining: a.DistanceRemaining,
	}
}

// AssignmentView is the tracking state of an assignment combined with the live unit position.
type AssignmentView struct {
	Assignment
	Current *Unit
}

func (v AssignmentView) Bearing() *float64 {
	if v.Current == nil {
		return nil
	}

	b := RoundTo(v.Current.BearingTo(v.Destination), 1)

	return &b
}

func (v AssignmentView) DTO() *WebAssignmentView {
	w := &WebAssignmentView{
		CallID:            v.CallID,
		UnitID:            v.UnitID,
		Status:            string(v.Status),
		Progress:          v.Progress,
		Destination:       v.Destination,
		EstimatedArrival:  v.EtaMinutes,
		DistanceRemaining: v.DistanceRemaining,
		LastUpdated:       Epoch(v.LastUpdated),
		Bearing:           v.Bearing(),
	}

	if v.Current != nil {
		w.CurrentLocation = v.Current.DTO()
	}

	return w
}
