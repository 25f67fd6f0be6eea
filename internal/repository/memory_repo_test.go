package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towops/towops/pkg/model"
)

func TestStoreReplaces(t *testing.T) {
	var r UnitRepository = NewUnitsMemoryRepo()

	r.Store(model.Unit{ID: "U1", Location: model.NewLocation(1, 1), Speed: 10, Zone: "Z-1"})
	r.Store(model.Unit{ID: "U1", Location: model.NewLocation(2, 2)})

	u, ok := r.Get("U1")
	require.True(t, ok)
	assert.Equal(t, 2., u.Lat)
	assert.Equal(t, 0., u.Speed)
	assert.Empty(t, u.Zone)
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get("U2")
	assert.False(t, ok)
}

func TestForEachOrdered(t *testing.T) {
	var r CallRepository = NewCallsMemoryRepo()

	for _, id := range []string{"C3", "C1", "C2", "C10"} {
		r.Store(model.Call{ID: id})
	}

	var ids []string

	r.ForEach(func(c model.Call) bool {
		ids = append(ids, c.ID)
		return true
	})

	assert.Equal(t, []string{"C1", "C10", "C2", "C3"}, ids)
	assert.Equal(t, ids, r.Keys())

	ids = ids[:0]
	r.ForEach(func(c model.Call) bool {
		ids = append(ids, c.ID)
		return len(ids) < 2
	})

	assert.Len(t, ids, 2)
}
