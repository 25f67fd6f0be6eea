package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/towops/towops/pkg/model"
)

type UpdateRequest struct {
	CallID string
	UnitID string
	Status string
	// Progress, when set, overwrites the stored percentage until the next view recomputes it.
	Progress *int
}

// Tracker owns assignment lifecycle and live tracking estimates.
type Tracker struct {
	st     *State
	logger *slog.Logger
}

func NewTracker(st *State) *Tracker {
	return &Tracker{
		st:     st,
		logger: slog.Default().With("logger", "tracker"),
	}
}

// Assign binds the call to the unit, replacing any earlier assignment of the call.
func (t *Tracker) Assign(callID, unitID string) (model.Call, error) {
	call, a, err := t.assign(callID, unitID)

	assignmentsMetric.WithLabelValues(resultLabel(err)).Inc()

	if err != nil {
		return call, err
	}

	t.logger.Info("assigned", slog.String("call", callID), slog.String("unit", unitID))

	ev := newEvent(EventAssign, a.AssignedAt, callID, unitID)
	ev.Call = &call
	ev.Assignment = &a
	t.st.events.Publish(ev)

	return call, nil
}

func (t *Tracker) assign(callID, unitID string) (model.Call, model.Assignment, error) {
	t.st.mx.Lock()
	defer t.st.mx.Unlock()

	call, ok := t.st.calls.Get(callID)
	if !ok {
		return model.Call{}, model.Assignment{}, fmt.Errorf("call %s: %w", callID, ErrNotFound)
	}

	unit, ok := t.st.units.Get(unitID)
	if !ok {
		return model.Call{}, model.Assignment{}, fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
	}

	if prev, ok := t.st.assignments.Get(callID); ok && prev.Status.IsActive() {
		t.logger.Warn("replacing active assignment", slog.String("call", callID), slog.String("unit", prev.UnitID))
	}

	now := t.st.now()

	call.AssignedUnit = unitID
	call.Status = model.CallAssigned
	call.AssignedAt = now

	a := model.Assignment{
		CallID:      callID,
		UnitID:      unitID,
		Status:      model.StatusAssigned,
		Progress:    0,
		Start:       unit.Location,
		Destination: call.Location,
		AssignedAt:  now,
		LastUpdated: now,
	}

	t.st.calls.Store(call)
	t.st.assignments.Store(a)
	activeAssignmentsMetric.Set(float64(t.st.activeCount()))

	return call, a, nil
}

// Update sets the tracking status and, for enroute units, refreshes ETA and remaining distance.
func (t *Tracker) Update(req UpdateRequest) (model.Assignment, error) {
	a, err := t.update(req)

	trackingUpdatesMetric.WithLabelValues(statusLabel(req.Status), resultLabel(err)).Inc()

	if err != nil {
		return a, err
	}

	t.logger.Debug("tracking update", slog.String("call", a.CallID), slog.String("status", a.Status.String()), slog.Int("progress", a.Progress))

	ev := newEvent(EventTracking, a.LastUpdated, a.CallID, a.UnitID)
	ev.Assignment = &a
	t.st.events.Publish(ev)

	return a, nil
}

func (t *Tracker) update(req UpdateRequest) (model.Assignment, error) {
	t.st.mx.Lock()
	defer t.st.mx.Unlock()

	a, ok := t.st.assignments.Get(req.CallID)
	if !ok {
		return model.Assignment{}, fmt.Errorf("assignment %s: %w", req.CallID, ErrNotFound)
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return model.Assignment{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if t.st.opts.StrictTransitions && !a.Status.CanTransition(status) {
		return model.Assignment{}, fmt.Errorf("%s -> %s: %w", a.Status, status, ErrFailedPrecondition)
	}

	a.Status = status
	a.LastUpdated = t.st.now()

	if req.Progress != nil {
		a.Progress = clampPercent(*req.Progress)
	}

	unitID := req.UnitID
	if unitID == "" {
		unitID = a.UnitID
	}

	if status == model.StatusEnroute {
		if unit, ok := t.st.units.Get(unitID); ok {
			dest := a.Destination
			if call, ok := t.st.calls.Get(req.CallID); ok {
				dest = call.Location
			}

			d := unit.DistTo(dest)
			eta := EtaMinutes(d, unit.Speed, t.st.opts.DefaultSpeedKmh)
			rd := model.RoundTo(d, 1)

			a.EtaMinutes = &eta
			a.DistanceRemaining = &rd
		}
	}

	t.st.assignments.Store(a)

	if status == model.StatusComplete {
		if call, ok := t.st.calls.Get(req.CallID); ok && call.AssignedUnit == a.UnitID {
			call.Status = model.CallComplete
			t.st.calls.Store(call)
		}
	}

	activeAssignmentsMetric.Set(float64(t.st.activeCount()))

	return a, nil
}

// View returns the assignment with the live unit position. When the unit is known and
// the planned trip has length, progress is recomputed from geometry and stored.
func (t *Tracker) View(callID string) (model.AssignmentView, error) {
	t.st.mx.Lock()
	defer t.st.mx.Unlock()

	a, ok := t.st.assignments.Get(callID)
	if !ok {
		return model.AssignmentView{}, fmt.Errorf("assignment %s: %w", callID, ErrNotFound)
	}

	return t.view(a), nil
}

// ListActive returns views of all assignments that are not complete, ordered by call id.
func (t *Tracker) ListActive() []model.AssignmentView {
	t.st.mx.Lock()
	defer t.st.mx.Unlock()

	res := make([]model.AssignmentView, 0)

	t.st.assignments.ForEach(func(a model.Assignment) bool {
		if a.Status.IsActive() {
			res = append(res, t.view(a))
		}

		return true
	})

	return res
}

// view must be called with the state write lock held.
func (t *Tracker) view(a model.Assignment) model.AssignmentView {
	v := model.AssignmentView{Assignment: a}

	unit, ok := t.st.units.Get(a.UnitID)
	if !ok {
		return v
	}

	v.Current = &unit

	if p, ok := Progress(a.TotalDistance(), unit.DistTo(a.Destination)); ok && p != a.Progress {
		a.Progress = p
		t.st.assignments.Store(a)
		v.Progress = p
	}

	return v
}

func statusLabel(s string) string {
	if st, err := model.ParseStatus(s); err == nil {
		return st.String()
	}

	return "unknown"
}
