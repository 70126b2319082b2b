package edit

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Listeners is a list of subscribers. Add returns the function to remove the
// subscriber again; it is safe to call it more than once.
type Listeners[T any] struct {
	mu      sync.Mutex
	nextID  int
	entries []listenerEntry[T]
}

type listenerEntry[T any] struct {
	id    int
	value T
}

func (l *Listeners[T]) Add(value T) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listenerEntry[T]{id: id, value: value})
	return func() { l.remove(id) }
}

func (l *Listeners[T]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := slices.IndexFunc(l.entries, func(e listenerEntry[T]) bool { return e.id == id }); i >= 0 {
		l.entries = slices.Delete(l.entries, i, i+1)
	}
}

// Snapshot returns the current subscribers in subscription order. The
// returned slice is not affected by later Adds or removes, so it can be
// iterated while subscribers unsubscribe.
func (l *Listeners[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	ret := make([]T, len(l.entries))
	for i, e := range l.entries {
		ret[i] = e.value
	}
	return ret
}

func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
