package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/towops/towops/pkg/model"
)

var ErrBadMessage = errors.New("bad position message")

// PositionMessage is the payload published by unit trackers.
type PositionMessage struct {
	UnitID    string   `json:"unit_id"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Speed     float64  `json:"speed"`
	Zone      string   `json:"zone"`
	Timestamp *float64 `json:"timestamp"`
}

// ParsePosition decodes a payload. Unit id from the topic is used when the payload has none.
func ParsePosition(pattern, topic string, payload []byte) (model.Unit, error) {
	var m PositionMessage

	if err := json.Unmarshal(payload, &m); err != nil {
		return model.Unit{}, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}

	if m.UnitID == "" {
		m.UnitID = unitFromTopic(pattern, topic)
	}

	if m.UnitID == "" {
		return model.Unit{}, fmt.Errorf("%w: no unit id", ErrBadMessage)
	}

	if m.Lat == nil || m.Lon == nil {
		return model.Unit{}, fmt.Errorf("%w: no position", ErrBadMessage)
	}

	if *m.Lat < -90 || *m.Lat > 90 || *m.Lon < -180 || *m.Lon > 180 {
		return model.Unit{}, fmt.Errorf("%w: position out of range %f,%f", ErrBadMessage, *m.Lat, *m.Lon)
	}

	u := model.Unit{
		ID:       m.UnitID,
		Location: model.NewLocation(*m.Lat, *m.Lon),
		Speed:    m.Speed,
		Zone:     m.Zone,
	}

	if m.Timestamp != nil {
		u.ReportedAt = model.FromEpoch(*m.Timestamp)
	}

	return u, nil
}

// unitFromTopic returns the topic level matched by the single-level wildcard of the pattern.
func unitFromTopic(pattern, topic string) string {
	pp := strings.Split(pattern, "/")
	tp := strings.Split(topic, "/")

	if len(pp) != len(tp) {
		return ""
	}

	for i, p := range pp {
		if p == "+" {
			return tp[i]
		}
	}

	return ""
}
