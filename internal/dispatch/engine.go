package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/towops/towops/pkg/model"
)

type Mode string

const (
	ModeClosest  Mode = "closest"
	ModeRotation Mode = "rotation"
)

func (m Mode) label() string {
	switch m {
	case ModeClosest, ModeRotation:
		return string(m)
	}

	return "unknown"
}

type Recommendation struct {
	Mode       Mode
	UnitID     string
	DistanceKm *float64
}

type WebRecommendation struct {
	Mode       string   `json:"mode"`
	UnitID     *string  `json:"unit_id"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

func (r Recommendation) DTO() *WebRecommendation {
	w := &WebRecommendation{Mode: string(r.Mode), DistanceKm: r.DistanceKm}

	if r.UnitID != "" {
		id := r.UnitID
		w.UnitID = &id
	}

	return w
}

// Engine picks a unit for a call.
type Engine struct {
	st     *State
	logger *slog.Logger
}

func NewEngine(st *State) *Engine {
	return &Engine{
		st:     st,
		logger: slog.Default().With("logger", "engine"),
	}
}

// Recommend suggests a unit for the call. Closest mode only reads state;
// rotation mode advances the zone queue.
func (e *Engine) Recommend(callID string, mode string) (Recommendation, error) {
	rec, err := e.recommend(callID, Mode(mode))

	recommendationsMetric.WithLabelValues(Mode(mode).label(), resultLabel(err)).Inc()

	if err != nil {
		e.logger.Debug("no recommendation", slog.String("call", callID), slog.String("mode", mode), slog.Any("error", err))

		return rec, err
	}

	if rec.DistanceKm != nil {
		recommendDistanceMetric.Observe(*rec.DistanceKm)
	}

	e.logger.Info("recommendation", slog.String("call", callID), slog.String("mode", mode), slog.String("unit", rec.UnitID))

	ev := newEvent(EventRecommendation, e.st.now(), callID, rec.UnitID)
	ev.Recommendation = &rec
	e.st.events.Publish(ev)

	return rec, nil
}

func (e *Engine) recommend(callID string, mode Mode) (Recommendation, error) {
	if mode == ModeRotation {
		e.st.mx.Lock()
		defer e.st.mx.Unlock()
	} else {
		e.st.mx.RLock()
		defer e.st.mx.RUnlock()
	}

	call, ok := e.st.calls.Get(callID)
	if !ok {
		return Recommendation{}, fmt.Errorf("call %s: %w", callID, ErrNotFound)
	}

	if e.st.units.Len() == 0 {
		return Recommendation{}, fmt.Errorf("no units available: %w", ErrFailedPrecondition)
	}

	switch mode {
	case ModeClosest:
		return e.closest(call), nil
	case ModeRotation:
		return e.rotate(call), nil
	default:
		return Recommendation{}, fmt.Errorf("unknown mode %q: %w", mode, ErrInvalidArgument)
	}
}

// closest scans units in ascending id order, so the first minimum wins ties.
func (e *Engine) closest(call model.Call) Recommendation {
	var (
		best   string
		bestKm float64
	)

	e.st.units.ForEach(func(u model.Unit) bool {
		km := call.DistTo(u.Location)

		if best == "" || km < bestKm {
			best, bestKm = u.ID, km
		}

		return true
	})

	d := model.RoundTo(bestKm, 2)

	return Recommendation{Mode: ModeClosest, UnitID: best, DistanceKm: &d}
}

func (e *Engine) rotate(call model.Call) Recommendation {
	zone := call.Zone
	if zone == "" {
		zone = e.st.opts.DefaultZone
	}

	if e.st.rotation.InitializeIfAbsent(zone, e.st.units.Keys()) {
		e.logger.Info("rotation queue created", slog.String("zone", zone))
	}

	next, _ := e.st.rotation.Rotate(zone)

	return Recommendation{Mode: ModeRotation, UnitID: next}
}
