package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/towops/towops/internal/dispatch"
)

type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	EventID   string    `gorm:"uniqueIndex;size:36" json:"event_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Kind      string    `gorm:"index;size:32" json:"kind"`
	CallID    string    `gorm:"index" json:"call_id,omitempty"`
	UnitID    string    `gorm:"index" json:"unit_id,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	Status    string    `json:"status,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

func (e *Entry) String() string {
	if e == nil {
		return "nil"
	}

	return fmt.Sprintf("%s %s call: %s, unit: %s", e.CreatedAt.Format(time.RFC3339), e.Kind, e.CallID, e.UnitID)
}

func EntryFromEvent(ev dispatch.Event) (*Entry, error) {
	e := &Entry{
		EventID:   ev.ID,
		CreatedAt: ev.Time,
		Kind:      string(ev.Kind),
		CallID:    ev.CallID,
		UnitID:    ev.UnitID,
	}

	var detail any

	switch {
	case ev.Recommendation != nil:
		e.Mode = string(ev.Recommendation.Mode)
		detail = ev.Recommendation.DTO()
	case ev.Assignment != nil:
		e.Status = ev.Assignment.Status.String()
		detail = ev.Assignment.DTO()
	case ev.Call != nil:
		e.Status = string(ev.Call.Status)
		detail = ev.Call.DTO()
	case ev.Unit != nil:
		detail = ev.Unit.DTO()
	}

	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			return nil, err
		}

		e.Detail = string(b)
	}

	return e, nil
}
