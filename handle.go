package tinymod

import "sync"

// Exclusive is an ownership wrapper around a resolved component with a
// caller-managed mutual-exclusion scope.
// For a Singleton every Exclusive of the same Instance shares one lock,
// the engine itself never takes it.
type Exclusive[I any] struct {
	value I
	mu    *sync.Mutex
}

// Lock waits for exclusive access and returns the component.
func (e *Exclusive[I]) Lock() I {
	e.mu.Lock()
	return e.value
}

func (e *Exclusive[I]) Unlock() {
	e.mu.Unlock()
}

// Do calls fn holding exclusive access.
func (e *Exclusive[I]) Do(fn func(I) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(e.value)
}
