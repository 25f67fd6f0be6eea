package model

import (
	"fmt"
	"time"
)

const DefaultPriority = 3

type Call struct {
	ID string
	Location
	Reason       string
	Priority     int
	Zone         string
	CreatedAt    time.Time
	AssignedUnit string
	Status       CallStatus
	AssignedAt   time.Time
}

func (c Call) Key() string {
	return c.ID
}

func (c Call) String() string {
	return fmt.Sprintf("call %s (%s, p%d) %.5f,%.5f", c.ID, c.Reason, c.Priority, c.Lat, c.Lon)
}

func (c Call) IsAssigned() bool {
	return c.AssignedUnit != ""
}

func (c Call) DTO() *WebCall {
	w := &WebCall{
		CallID:    c.ID,
		Lat:       c.Lat,
		Lon:       c.Lon,
		Reason:    c.Reason,
		Priority:  c.Priority,
		Zone:      optString(c.Zone),
		Timestamp: Epoch(c.CreatedAt),
		Status:    string(c.Status),
	}

	if c.AssignedUnit != "" {
		w.AssignedUnit = optString(c.AssignedUnit)
	}

	if !c.AssignedAt.IsZero() {
		ts := Epoch(c.AssignedAt)
		w.AssignedTs = &ts
	}

	return w
}
