package rotation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobin(t *testing.T) {
	s := New()

	for _, u := range []string{"A", "B", "C"} {
		s.EnsureMember("Z-1", u)
	}

	var got []string

	for i := 0; i < 7; i++ {
		u, ok := s.Rotate("Z-1")
		require.True(t, ok)
		got = append(got, u)
	}

	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C", "A"}, got)
}

func TestEnsureMemberIdempotent(t *testing.T) {
	s := New()

	s.EnsureMember("Z-1", "A")
	s.EnsureMember("Z-1", "B")
	s.EnsureMember("Z-1", "A")

	assert.Equal(t, []string{"A", "B"}, s.Queue("Z-1"))

	_, _ = s.Rotate("Z-1")
	s.EnsureMember("Z-1", "A")
	assert.Equal(t, []string{"B", "A"}, s.Queue("Z-1"))
}

func TestInitializeIfAbsent(t *testing.T) {
	s := New()

	require.True(t, s.InitializeIfAbsent("default", []string{"U3", "U1", "U2", "U1"}))
	assert.Equal(t, []string{"U1", "U2", "U3"}, s.Queue("default"))

	require.False(t, s.InitializeIfAbsent("default", []string{"X"}))
	assert.Equal(t, []string{"U1", "U2", "U3"}, s.Queue("default"))

	s.EnsureMember("Z-1", "U9")
	require.False(t, s.InitializeIfAbsent("Z-1", []string{"U1"}))
	assert.Equal(t, []string{"U9"}, s.Queue("Z-1"))
}

func TestRotateEmpty(t *testing.T) {
	s := New()

	_, ok := s.Rotate("nope")
	assert.False(t, ok)

	s.InitializeIfAbsent("empty", nil)
	_, ok = s.Rotate("empty")
	assert.False(t, ok)
	assert.NotNil(t, s.Queue("empty"))
}

func TestRemove(t *testing.T) {
	s := New()

	for _, u := range []string{"A", "B", "C"} {
		s.EnsureMember("Z-1", u)
	}

	require.True(t, s.Remove("Z-1", "B"))
	require.False(t, s.Remove("Z-1", "B"))
	require.False(t, s.Remove("Z-2", "A"))
	assert.Equal(t, []string{"A", "C"}, s.Queue("Z-1"))

	s.EnsureMember("Z-1", "B")
	assert.Equal(t, []string{"A", "C", "B"}, s.Queue("Z-1"))
	assert.Equal(t, []string{"Z-1"}, s.Zones())
}

func TestConcurrentRotate(t *testing.T) {
	s := New()

	n := 50
	for i := 0; i < n; i++ {
		s.EnsureMember("Z", fmt.Sprintf("U%03d", i))
	}

	res := make(chan string, n)
	wg := new(sync.WaitGroup)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			u, ok := s.Rotate("Z")
			if ok {
				res <- u
			}
		}()
	}

	wg.Wait()
	close(res)

	seen := make(map[string]bool)
	for u := range res {
		require.False(t, seen[u], "unit %s returned twice", u)
		seen[u] = true
	}

	assert.Len(t, seen, n)
}
