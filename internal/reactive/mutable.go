// Package reactive provides Mutable, an explicitly owned value that
// renderers can observe.
package reactive

import "sync"

// Mutable holds a value behind a single lock and notifies subscribers after
// every committed change. The zero value is not usable; create one with New.
type Mutable[T any] struct {
	mu     sync.Mutex
	value  T
	nextID int
	subs   map[int]func(T)
}

// New creates a Mutable holding initial.
func New[T any](initial T) *Mutable[T] {
	return &Mutable[T]{value: initial, subs: make(map[int]func(T))}
}

// Get returns a copy of the current value.
func (m *Mutable[T]) Get() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Set replaces the value and notifies subscribers.
func (m *Mutable[T]) Set(v T) {
	m.mu.Lock()
	m.value = v
	subs := m.snapshotSubs()
	m.mu.Unlock()
	notify(subs, v)
}

// Update applies fn to a copy of the value. The copy is committed only if fn
// returns nil; on error the stored value is left untouched and no subscriber
// runs.
func (m *Mutable[T]) Update(fn func(*T) error) error {
	m.mu.Lock()
	next := m.value
	if err := fn(&next); err != nil {
		m.mu.Unlock()
		return err
	}
	m.value = next
	subs := m.snapshotSubs()
	m.mu.Unlock()
	notify(subs, next)
	return nil
}

// Subscribe registers fn to be called with every new value. fn is called
// without the lock held, so it may read the Mutable. The returned function
// removes the subscription.
func (m *Mutable[T]) Subscribe(fn func(T)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Mutable[T]) snapshotSubs() []func(T) {
	subs := make([]func(T), 0, len(m.subs))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func notify[T any](subs []func(T), v T) {
	for _, fn := range subs {
		fn(v)
	}
}
