package callbacks

import (
	"sync"

	"github.com/google/uuid"
)

// Callback fans a message out to named subscribers. Each delivery runs in its own
// goroutine; a subscriber returning false is removed.
type Callback[V any] struct {
	callbacks sync.Map
}

func New[V any]() *Callback[V] {
	return &Callback[V]{
		callbacks: sync.Map{},
	}
}

func (p *Callback[V]) Publish(msg V) {
	p.callbacks.Range(func(key, value any) bool {
		if fn, ok := value.(func(msg V) bool); ok {
			go func() {
				if !fn(msg) {
					p.callbacks.Delete(key)
				}
			}()
		}

		return true
	})
}

func (p *Callback[V]) Subscribe(name string, fn func(msg V) bool) {
	p.callbacks.Store(name, fn)
}

// SubscribeAnon registers fn under a generated name and returns it.
func (p *Callback[V]) SubscribeAnon(fn func(msg V) bool) string {
	name := uuid.NewString()
	p.Subscribe(name, fn)

	return name
}

func (p *Callback[V]) Unsubscribe(name string) bool {
	_, found := p.callbacks.LoadAndDelete(name)

	return found
}

func (p *Callback[V]) Len() int {
	n := 0

	p.callbacks.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}
