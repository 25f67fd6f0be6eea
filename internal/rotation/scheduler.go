package rotation

import (
	"sync"

	"github.com/towops/towops/pkg/util"
)

type queue struct {
	order   []string
	members util.Set[string]
}

// Scheduler keeps a round-robin order of unit ids per zone.
type Scheduler struct {
	mx     sync.Mutex
	queues map[string]*queue
}

func New() *Scheduler {
	return &Scheduler{
		queues: make(map[string]*queue),
	}
}

func newQueue(ids []string) *queue {
	q := &queue{members: util.NewSet(ids...)}
	q.order = q.members.Sorted()

	return q
}

// EnsureMember appends unit to the back of the zone queue unless it is already there.
func (s *Scheduler) EnsureMember(zone, unit string) {
	s.mx.Lock()
	defer s.mx.Unlock()

	q, ok := s.queues[zone]
	if !ok {
		q = newQueue(nil)
		s.queues[zone] = q
	}

	if q.members.Has(unit) {
		return
	}

	q.members.Add(unit)
	q.order = append(q.order, unit)
}

// InitializeIfAbsent creates the zone queue from ids in ascending order.
// It returns false when the queue already exists.
func (s *Scheduler) InitializeIfAbsent(zone string, ids []string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	if _, ok := s.queues[zone]; ok {
		return false
	}

	s.queues[zone] = newQueue(ids)

	return true
}

// Rotate moves the front of the zone queue to the back and returns it.
func (s *Scheduler) Rotate(zone string) (string, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()

	q, ok := s.queues[zone]
	if !ok || len(q.order) == 0 {
		return "", false
	}

	next := q.order[0]
	q.order = append(q.order[1:], next)

	return next, true
}

func (s *Scheduler) Remove(zone, unit string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	q, ok := s.queues[zone]
	if !ok || !q.members.Has(unit) {
		return false
	}

	q.members.Remove(unit)

	for i, id := range q.order {
		if id == unit {
			q.order = append(q.order[:i:i], q.order[i+1:]...)
			break
		}
	}

	return true
}

// Queue returns a copy of the zone order, nil for an unknown zone.
func (s *Scheduler) Queue(zone string) []string {
	s.mx.Lock()
	defer s.mx.Unlock()

	q, ok := s.queues[zone]
	if !ok {
		return nil
	}

	res := make([]string, len(q.order))
	copy(res, q.order)

	return res
}

func (s *Scheduler) Zones() []string {
	s.mx.Lock()
	defer s.mx.Unlock()

	zones := util.NewSet[string]()
	for z := range s.queues {
		zones.Add(z)
	}

	return zones.Sorted()
}
