package model

import (
	"time"
)

type WebCall struct {
	CallID       string   `json:"call_id"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Reason       string   `json:"reason"`
	Priority     int      `json:"priority"`
	Zone         *string  `json:"zone"`
	Timestamp    float64  `json:"timestamp"`
	Status       string   `json:"status"`
	AssignedUnit *string  `json:"assigned_unit,omitempty"`
	AssignedTs   *float64 `json:"assigned_ts,omitempty"`
}

type WebUnit struct {
	UnitID    string  `json:"unit_id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Speed     float64 `json:"speed"`
	Zone      *string `json:"zone"`
	Timestamp float64 `json:"timestamp"`
}

type WebAssignment struct {
	CallID            string   `json:"call_id"`
	UnitID            string   `json:"unit_id"`
	Status            string   `json:"status"`
	Progress          int      `json:"progress"`
	StartLocation     Location `json:"start_location"`
	Destination       Location `json:"destination"`
	AssignedAt        float64  `json:"assigned_at"`
	LastUpdated       float64  `json:"last_updated"`
	EstimatedArrival  *int     `json:"estimated_arrival"`
	DistanceRemaining *float64 `json:"distance_remaining"`
}

type WebAssignmentView struct {
	CallID            string   `json:"call_id"`
	UnitID            string   `json:"unit_id"`
	Status            string   `json:"status"`
	Progress          int      `json:"progress"`
	CurrentLocation   *WebUnit `json:"current_location"`
	Destination       Location `json:"destination"`
	EstimatedArrival  *int     `json:"estimated_arrival"`
	DistanceRemaining *float64 `json:"distance_remaining"`
	LastUpdated       float64  `json:"last_updated"`
	Bearing           *float64 `json:"bearing,omitempty"`
}

// Epoch converts t to fractional unix seconds, the wire format for timestamps.
func Epoch(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}

	return float64(t.UnixNano()) / float64(time.Second)
}

func FromEpoch(ts float64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}

	sec := int64(ts)

	return time.Unix(sec, int64((ts-float64(sec))*float64(time.Second)))
}

func optString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
