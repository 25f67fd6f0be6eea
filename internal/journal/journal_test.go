package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towops/towops/internal/dispatch"
	"github.com/towops/towops/pkg/model"
)

func getTestJournal(t *testing.T) *Journal {
	t.Helper()

	db, err := GetDatabase(":memory:", false)
	require.NoError(t, err)

	j := New(db)
	require.NoError(t, j.Migrate())

	return j
}

func TestAppendAndQuery(t *testing.T) {
	j := getTestJournal(t)

	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := 11.12

	events := []dispatch.Event{
		{ID: "e1", Kind: dispatch.EventCall, Time: t0, CallID: "C1", Call: &model.Call{ID: "C1", Status: model.CallNew}},
		{ID: "e2", Kind: dispatch.EventRecommendation, Time: t0.Add(time.Second), CallID: "C1", UnitID: "U1",
			Recommendation: &dispatch.Recommendation{Mode: dispatch.ModeClosest, UnitID: "U1", DistanceKm: &d}},
		{ID: "e3", Kind: dispatch.EventAssign, Time: t0.Add(time.Second * 2), CallID: "C1", UnitID: "U1",
			Assignment: &model.Assignment{CallID: "C1", UnitID: "U1", Status: model.StatusAssigned}},
		{ID: "e4", Kind: dispatch.EventUnit, Time: t0.Add(time.Second * 3), UnitID: "U2", Unit: &model.Unit{ID: "U2"}},
	}

	for _, ev := range events {
		require.NoError(t, j.Append(ev))
	}

	assert.Equal(t, int64(4), j.Query().Count())

	res := j.Query().Call("C1").Get()
	require.Len(t, res, 3)
	assert.Equal(t, "e3", res[0].EventID)
	assert.Equal(t, "assigned", res[0].Status)
	assert.Equal(t, "e1", res[2].EventID)

	rec := j.Query().Kind(string(dispatch.EventRecommendation)).One()
	require.NotNil(t, rec)
	assert.Equal(t, "closest", rec.Mode)
	assert.Contains(t, rec.Detail, `"distance_km":11.12`)

	assert.Len(t, j.Query().Unit("U2").Get(), 1)
	assert.Len(t, j.Query().After(t0.Add(time.Second)).Get(), 2)
	assert.Len(t, j.Query().Limit(2).Get(), 2)
	assert.Nil(t, j.Query().Call("nope").One())
}

func TestAttach(t *testing.T) {
	j := getTestJournal(t)

	st := dispatch.NewState(dispatch.DefaultOptions())
	j.Attach(st)

	st.RecordCall(model.Call{ID: "C1", Reason: "Accident"})
	st.RecordUnit(model.Unit{ID: "U1", Location: model.NewLocation(0.1, 0)})

	_, err := dispatch.NewTracker(st).Assign("C1", "U1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return j.Query().Count() == 3
	}, time.Second*2, time.Millisecond*10)

	j.Detach(st)
	st.RecordUnit(model.Unit{ID: "U2"})

	time.Sleep(time.Millisecond * 50)
	assert.Equal(t, int64(3), j.Query().Count())
	assert.Equal(t, int64(1), j.Query().Kind("assign").Count())
}

func TestNilJournal(t *testing.T) {
	var j *Journal

	require.NoError(t, j.Append(dispatch.Event{}))
	require.Error(t, j.Migrate())
}
