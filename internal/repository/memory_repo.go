package repository

import (
	"slices"

	"github.com/towops/towops/pkg/model"
)

type MemoryRepo[T model.Keyed] struct {
	data map[string]T
}

func NewMemoryRepo[T model.Keyed]() *MemoryRepo[T] {
	return &MemoryRepo[T]{
		data: make(map[string]T),
	}
}

func NewCallsMemoryRepo() *MemoryRepo[model.Call] {
	return NewMemoryRepo[model.Call]()
}

func NewUnitsMemoryRepo() *MemoryRepo[model.Unit] {
	return NewMemoryRepo[model.Unit]()
}

func NewAssignmentsMemoryRepo() *MemoryRepo[model.Assignment] {
	return NewMemoryRepo[model.Assignment]()
}

// Store replaces any record with the same key.
func (r *MemoryRepo[T]) Store(v T) {
	r.data[v.Key()] = v
}

func (r *MemoryRepo[T]) Get(key string) (T, bool) {
	v, ok := r.data[key]

	return v, ok
}

// ForEach visits records in ascending key order until f returns false.
func (r *MemoryRepo[T]) ForEach(f func(v T) bool) {
	for _, k := range r.Keys() {
		if !f(r.data[k]) {
			return
		}
	}
}

func (r *MemoryRepo[T]) Keys() []string {
	keys := make([]string, 0, len(r.data))

	for k := range r.data {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

func (r *MemoryRepo[T]) Len() int {
	return len(r.data)
}
