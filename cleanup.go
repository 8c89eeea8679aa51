package tinymod

import (
	"errors"
	"fmt"
	"sync"
)

// Cleanup releases what a Singleton component acquired while being built.
type Cleanup func()

// CallWithRecovery calls fn turning a panic into an error.
func (fn Cleanup) CallWithRecovery(component ComponentID) (err error) {
	defer func() {
		if rp := recover(); rp != nil {
			err = fmt.Errorf("cleanup of %s panicked: %v", component, rp)
		}
	}()

	fn()

	return nil
}

type cleanupRecord struct {
	fn        Cleanup
	component ComponentID
}

// cleanupStack keeps cleanups in build order.
// A component is built after its dependencies, so running the stack backwards
// releases dependants first.
// Once run, the stack accepts nothing more.
type cleanupStack struct {
	records []cleanupRecord
	mu      sync.Mutex
	done    bool
}

// push reports false if the stack has already run; fn is then left to the caller.
func (cs *cleanupStack) push(component ComponentID, fn Cleanup) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.done {
		return false
	}

	if fn != nil {
		cs.records = append(cs.records, cleanupRecord{fn: fn, component: component})
	}

	return true
}

func (cs *cleanupStack) run() error {
	cs.mu.Lock()
	records := cs.records
	cs.records = nil
	cs.done = true
	cs.mu.Unlock()

	var errs []error
	for i := len(records) - 1; i >= 0; i-- {
		if err := records[i].fn.CallWithRecovery(records[i].component); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
