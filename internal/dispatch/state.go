package dispatch

import (
	"log/slog"
	"sync"
	"time"

	"github.com/towops/towops/internal/callbacks"
	"github.com/towops/towops/internal/repository"
	"github.com/towops/towops/internal/rotation"
	"github.com/towops/towops/pkg/model"
)

const (
	DefaultZone     = "default"
	DefaultSpeedKmh = 30.
)

type Options struct {
	// DefaultZone is the rotation zone for calls without one.
	DefaultZone string
	// DefaultSpeedKmh replaces a zero or missing unit speed in ETA estimates.
	DefaultSpeedKmh float64
	// StrictZones drops a unit from its previous zone queue when it reports a new zone.
	StrictZones bool
	// StrictTransitions rejects status changes outside assigned->enroute->on_scene->complete.
	StrictTransitions bool
	Clock             func() time.Time
}

func DefaultOptions() Options {
	return Options{
		DefaultZone:     DefaultZone,
		DefaultSpeedKmh: DefaultSpeedKmh,
		StrictZones:     true,
		Clock:           time.Now,
	}
}

// State owns every live collection of the dispatch core behind one lock.
type State struct {
	mx          sync.RWMutex
	calls       repository.CallRepository
	units       repository.UnitRepository
	assignments repository.AssignmentRepository
	rotation    *rotation.Scheduler

	opts   Options
	events *callbacks.Callback[Event]
	logger *slog.Logger
}

func NewState(opts Options) *State {
	if opts.DefaultZone == "" {
		opts.DefaultZone = DefaultZone
	}

	if opts.DefaultSpeedKmh <= 0 {
		opts.DefaultSpeedKmh = DefaultSpeedKmh
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &State{
		calls:       repository.NewCallsMemoryRepo(),
		units:       repository.NewUnitsMemoryRepo(),
		assignments: repository.NewAssignmentsMemoryRepo(),
		rotation:    rotation.New(),
		opts:        opts,
		events:      callbacks.New[Event](),
		logger:      slog.Default().With("logger", "dispatch"),
	}
}

func (s *State) Events() *callbacks.Callback[Event] {
	return s.events
}

func (s *State) Options() Options {
	return s.opts
}

func (s *State) now() time.Time {
	return s.opts.Clock()
}

// RecordCall stores c, replacing any previous record with the same id.
func (s *State) RecordCall(c model.Call) model.Call {
	if c.Priority == 0 {
		c.Priority = model.DefaultPriority
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}

	if c.Status == "" {
		c.Status = model.CallNew
	}

	s.mx.Lock()
	s.calls.Store(c)
	knownMetric.WithLabelValues("calls").Set(float64(s.calls.Len()))
	s.mx.Unlock()

	s.logger.Debug("call recorded", slog.String("call", c.ID), slog.String("reason", c.Reason))

	ev := newEvent(EventCall, c.CreatedAt, c.ID, "")
	ev.Call = &c
	s.events.Publish(ev)

	return c
}

// RecordUnit stores the latest report of u and keeps its zone queue membership.
func (s *State) RecordUnit(u model.Unit) model.Unit {
	if u.ReportedAt.IsZero() {
		u.ReportedAt = s.now()
	}

	s.mx.Lock()
	prev, known := s.units.Get(u.ID)
	s.units.Store(u)

	if s.opts.StrictZones && known && prev.Zone != "" && prev.Zone != u.Zone {
		if s.rotation.Remove(prev.Zone, u.ID) {
			s.logger.Info("unit left zone", slog.String("unit", u.ID), slog.String("zone", prev.Zone))
		}
	}

	if u.Zone != "" {
		s.rotation.EnsureMember(u.Zone, u.ID)
	}

	knownMetric.WithLabelValues("units").Set(float64(s.units.Len()))
	s.mx.Unlock()

	ev := newEvent(EventUnit, u.ReportedAt, "", u.ID)
	ev.Unit = &u
	s.events.Publish(ev)

	return u
}

func (s *State) GetCall(id string) (model.Call, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return s.calls.Get(id)
}

func (s *State) GetUnit(id string) (model.Unit, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return s.units.Get(id)
}

// Calls returns all calls ordered by id.
func (s *State) Calls() []model.Call {
	s.mx.RLock()
	defer s.mx.RUnlock()

	res := make([]model.Call, 0, s.calls.Len())
	s.calls.ForEach(func(c model.Call) bool {
		res = append(res, c)
		return true
	})

	return res
}

// Units returns all units ordered by id.
func (s *State) Units() []model.Unit {
	s.mx.RLock()
	defer s.mx.RUnlock()

	res := make([]model.Unit, 0, s.units.Len())
	s.units.ForEach(func(u model.Unit) bool {
		res = append(res, u)
		return true
	})

	return res
}

func (s *State) RotationQueue(zone string) []string {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return s.rotation.Queue(zone)
}

// CountsByReason rolls calls up by reason; an empty reason counts as "Unknown".
func (s *State) CountsByReason() (map[string]int, int) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	res := make(map[string]int)

	s.calls.ForEach(func(c model.Call) bool {
		r := c.Reason
		if r == "" {
			r = "Unknown"
		}

		res[r]++

		return true
	})

	return res, s.calls.Len()
}

func (s *State) activeCount() int {
	n := 0

	s.assignments.ForEach(func(a model.Assignment) bool {
		if a.Status.IsActive() {
			n++
		}

		return true
	})

	return n
}
