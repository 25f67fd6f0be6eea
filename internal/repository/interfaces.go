package repository

import (
	"github.com/towops/towops/pkg/model"
)

// Repository keeps the latest record per key. Implementations are not
// synchronized; the owner serializes access.
type Repository[T model.Keyed] interface {
	Store(v T)
	Get(key string) (T, bool)
	ForEach(f func(v T) bool)
	Keys() []string
	Len() int
}

type CallRepository = Repository[model.Call]

type UnitRepository = Repository[model.Unit]

type AssignmentRepository = Repository[model.Assignment]
