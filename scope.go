package tinymod

import (
	"slices"
	"sync"
)

type cellState int

const (
	unbuilt cellState = iota
	building
	built
)

// singletonCell holds the one logical instance of a Singleton binding.
// It moves Unbuilt -> Building -> Built; a failed build moves it back to Unbuilt.
type singletonCell struct {
	value any
	done  chan struct{}
	// exclusive is handed to callers of ResolveExclusive, the engine never locks it.
	exclusive sync.Mutex
	mu        sync.Mutex
	state     cellState
}

// acquire returns built value, or makes the caller the builder.
// Callers that find the cell Building wait for the builder to finish.
// Finding the cell Building while b is on the caller's own chain means a cycle
// got past validation: reentered is reported instead of waiting forever.
func (cell *singletonCell) acquire(b *binding, chain []*binding) (value any, builder, reentered bool) {
	for {
		cell.mu.Lock()

		switch cell.state {
		case built:
			value := cell.value
			cell.mu.Unlock()

			return value, false, false
		case building:
			if slices.Contains(chain, b) {
				cell.mu.Unlock()

				return nil, false, true
			}

			done := cell.done
			cell.mu.Unlock()
			<-done
		default:
			cell.state = building
			cell.done = make(chan struct{})
			cell.mu.Unlock()

			return nil, true, false
		}
	}
}

func (cell *singletonCell) finish(value any, ok bool) {
	cell.mu.Lock()
	defer cell.mu.Unlock()

	if ok {
		cell.value = value
		cell.state = built
	} else {
		cell.value = nil
		cell.state = unbuilt
	}

	close(cell.done)
}
