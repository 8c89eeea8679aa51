package tinymod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Instance is a live module: it builds Singletons lazily, at most once,
// and builds Providers on every resolution.
// It is safe for concurrent use.
type Instance struct {
	def       *Definition
	log       *zap.Logger
	observer  Observer
	overrides map[ComponentID]map[string]any
	// cells and delegates are filled by Builder.Build and never change afterwards.
	cells     map[*binding]*singletonCell
	delegates map[*binding]*Instance
	cleanups  cleanupStack
	closed    atomic.Bool
	id        uuid.UUID
}

func (i *Instance) ID() uuid.UUID {
	return i.id
}

func (i *Instance) Definition() *Definition {
	return i.def
}

// Close releases every Singleton this Instance built with ComponentWithCleanup,
// dependants before their dependencies.
// Resolution after Close fails with ErrInstanceClosed. Close is idempotent.
func (i *Instance) Close() error {
	if i.closed.Swap(true) {
		return nil
	}

	err := i.cleanups.run()
	if err != nil {
		i.log.Error("cleanup failed", zap.Error(err))
	}

	i.log.Debug("module instance closed")

	return err
}

type resolveOptions struct {
	qualifier string
}

type ResolveOption func(*resolveOptions)

// Qualified resolves the Provider registered under qualifier q.
func Qualified(q string) ResolveOption {
	return func(opts *resolveOptions) { opts.qualifier = q }
}

// ResolveShared returns component bound to I.
// The same Singleton can be held by any number of callers at once.
func ResolveShared[I any](ctx context.Context, inst *Instance, opts ...ResolveOption) (I, error) {
	var zero I

	v, _, err := inst.resolveInterface(ctx, IDOf[I](), opts)
	if err != nil {
		return zero, err
	}

	if v == nil {
		return zero, nil
	}

	return v.(I), nil
}

// MustResolveShared is like ResolveShared but panics on error.
func MustResolveShared[I any](ctx context.Context, inst *Instance, opts ...ResolveOption) I {
	v, err := ResolveShared[I](ctx, inst, opts...)
	if err != nil {
		panic(err)
	}

	return v
}

// ResolveExclusive returns component bound to I wrapped into Exclusive.
// All Exclusive handles of one Singleton share a lock the caller manages.
func ResolveExclusive[I any](ctx context.Context, inst *Instance, opts ...ResolveOption) (*Exclusive[I], error) {
	v, mu, err := inst.resolveInterface(ctx, IDOf[I](), opts)
	if err != nil {
		return nil, err
	}

	e := &Exclusive[I]{mu: mu}
	if v != nil {
		e.value = v.(I)
	}

	return e, nil
}

func (i *Instance) resolveInterface(ctx context.Context, iface InterfaceID, opts []ResolveOption) (any, *sync.Mutex, error) {
	if i == nil {
		return nil, nil, ErrNilInstance
	}

	if i.closed.Load() {
		return nil, nil, ErrInstanceClosed
	}

	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	key := bindingKey{iface: iface, qualifier: o.qualifier}
	b, ok := i.def.scope[key]
	if !ok {
		return nil, nil, newUnboundInterfaceError(i.def.name, key)
	}

	return i.resolve(ctx, b, nil)
}

// resolve returns value of b, building it and its dependencies post-order when needed.
// chain holds Singletons being built by the current call.
func (i *Instance) resolve(ctx context.Context, b *binding, chain []*binding) (any, *sync.Mutex, error) {
	if owner, ok := i.delegates[b]; ok {
		return owner.resolveOwned(ctx, b)
	}

	if b.desc.lifetime == Transient {
		v, _, err := i.build(ctx, b, chain)
		return v, new(sync.Mutex), err
	}

	cell, ok := i.cells[b]
	if !ok {
		i.fatal(newInternalError("binding has no singleton cell", b.desc.name))
	}

	v, builder, reentered := cell.acquire(b, chain)
	if reentered {
		i.fatal(newInternalError("re-entered while building, cycle was not detected", b.desc.name))
	}

	if !builder {
		return v, &cell.exclusive, nil
	}

	done := false
	defer func() {
		if !done {
			cell.finish(nil, false)
		}
	}()

	v, cleanup, err := i.build(ctx, b, append(chain, b))
	done = true

	if err != nil {
		cell.finish(nil, false)
		return nil, nil, err
	}

	if !i.cleanups.push(b.desc.name, cleanup) {
		// Close ran while the component was being built.
		cell.finish(nil, false)

		if cleanup != nil {
			if err := cleanup.CallWithRecovery(b.desc.name); err != nil {
				i.log.Error("cleanup failed", zap.Error(err))
			}
		}

		return nil, nil, ErrInstanceClosed
	}

	if i.closed.Load() {
		// Close has not drained the stack yet, it will release the component.
		cell.finish(nil, false)
		return nil, nil, ErrInstanceClosed
	}

	cell.finish(v, true)

	return v, &cell.exclusive, nil
}

// resolveOwned serves a binding on behalf of an Instance this one was shared with.
func (i *Instance) resolveOwned(ctx context.Context, b *binding) (any, *sync.Mutex, error) {
	if i.closed.Load() {
		return nil, nil, ErrInstanceClosed
	}

	return i.resolve(ctx, b, nil)
}

func (i *Instance) build(ctx context.Context, b *binding, chain []*binding) (any, Cleanup, error) {
	supplied := i.overrides[b.desc.name]
	values := make(map[string]any, len(b.desc.slots))

	for idx, slot := range b.desc.slots {
		if v, ok := supplied[slot.name]; ok {
			values[slot.name] = v
			continue
		}

		switch {
		case slot.kind == dependencySlot && b.deps[idx] != nil:
			v, _, err := i.resolve(ctx, b.deps[idx], chain)
			if err != nil {
				return nil, nil, err
			}

			values[slot.name] = v
		case slot.kind == configSlot && slot.fallback != nil:
			values[slot.name] = slot.fallback()
		default:
			i.fatal(newInternalError(
				fmt.Sprintf("slot %q must be supplied but Builder.Build let it through", slot.name),
				b.desc.name,
			))
		}
	}

	start := time.Now()
	v, cleanup, err := call(b, Args{ctx: ctx, values: values, component: b.desc.name})
	elapsed := time.Since(start)

	i.observer.ObserveBuild(BuildEvent{
		Err:       err,
		Module:    i.def.name,
		Component: b.desc.name,
		Interface: b.desc.iface,
		Lifetime:  b.desc.lifetime,
		Duration:  elapsed,
	})

	if err != nil {
		err = newComponentBuildFailedError(err, b)
		i.log.Error("component build failed", zap.Error(err))

		return nil, nil, err
	}

	i.log.Debug(
		"component built",
		zap.String("component", string(b.desc.name)),
		zap.Stringer("interface", b.desc.iface),
		zap.Stringer("lifetime", b.desc.lifetime),
		zap.Duration("took", elapsed),
	)

	return v, cleanup, nil
}

// call runs the build function turning a panic into an error.
func call(b *binding, args Args) (v any, cleanup Cleanup, err error) {
	defer func() {
		if rp := recover(); rp != nil {
			if ie, ok := rp.(*InternalError); ok {
				panic(ie)
			}

			if perr, ok := rp.(error); ok {
				err = fmt.Errorf("recovered from panic: %w", perr)
			} else {
				err = fmt.Errorf("recovered from panic: %v", rp)
			}
		}
	}()

	return b.desc.build(args)
}

func (i *Instance) fatal(err *InternalError) {
	i.log.Error("invariant violated", zap.Error(err))
	panic(err)
}
