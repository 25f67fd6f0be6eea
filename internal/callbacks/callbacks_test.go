package callbacks

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeliver(t *testing.T) {
	cb := New[string]()

	var got atomic.Int32

	cb.Subscribe("a", func(msg string) bool {
		got.Add(1)
		return true
	})
	name := cb.SubscribeAnon(func(msg string) bool {
		got.Add(1)
		return true
	})

	require.Equal(t, 2, cb.Len())

	cb.Publish("hello")

	require.Eventually(t, func() bool { return got.Load() == 2 }, time.Second, time.Millisecond*5)

	require.True(t, cb.Unsubscribe(name))
	require.False(t, cb.Unsubscribe(name))
	require.Equal(t, 1, cb.Len())
}

func TestRemoveOnFalse(t *testing.T) {
	cb := New[int]()

	cb.Subscribe("once", func(msg int) bool {
		return false
	})

	cb.Publish(1)

	require.Eventually(t, func() bool { return cb.Len() == 0 }, time.Second, time.Millisecond*5)
}

func TestRemove(t *testing.T) {
	cb := New[string]()

	for i := 0; i < 30; i++ {
		cb.Subscribe(fmt.Sprintf("cb_%d", i), func(msg string) bool {
			return rand.Intn(1000) != 1
		})
	}

	n := 10

	ctx, cancel := context.WithCancel(context.Background())

	wg := new(sync.WaitGroup)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			for ctx.Err() == nil {
				cb.Publish("aaa")

				time.Sleep(time.Millisecond * time.Duration(rand.Intn(10)))
			}

			wg.Done()
		}()
	}

	time.Sleep(time.Millisecond * 500)
	cancel()

	wg.Wait()

	require.LessOrEqual(t, cb.Len(), 30)
}
