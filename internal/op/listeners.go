package op

import (
	"sort"
	"sync"
)

// Listeners is a set of callbacks keyed by registration order. The zero value
// is ready to use.
type Listeners[E any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(E)
}

// Add registers fn and returns a function that removes it again.
func (l *Listeners[E]) Add(fn func(E)) func() {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(E))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

// Emit calls every registered listener with e. Listeners run on the caller's
// goroutine, outside the internal lock, so they may add or remove listeners.
func (l *Listeners[E]) Emit(e E) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(E), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Len reports the number of registered listeners.
func (l *Listeners[E]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
