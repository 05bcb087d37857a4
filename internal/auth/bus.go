package auth

import (
	"sync"

	"github.com/yahyalegrini24/AttendEase/internal/identity"
)

// Bus fans auth events out to subscribers. Publish calls subscribers
// synchronously on the caller's goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]func(identity.Event)
	next uint64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]func(identity.Event))}
}

func (b *Bus) Subscribe(fn func(identity.Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Publish(ev identity.Event) {
	b.mu.RLock()
	fns := make([]func(identity.Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
