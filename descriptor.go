package tinymod

// ComponentID identifies a component within the closure of a module definition.
// Overrides are keyed by it.
type ComponentID string

type buildFunc func(Args) (any, Cleanup, error)

// Descriptor describes one concrete implementation bound to one interface:
// its slots, its lifetime and how to build it.
type Descriptor struct {
	err       error
	build     buildFunc
	name      ComponentID
	qualifier string
	iface     InterfaceID
	slots     []slotInfo
	uses      []paramUse
	lifetime  Lifetime
}

// Returns Singleton descriptor of component `name` bound to interface I.
func Component[I any](name ComponentID, build func(Args) (I, error), slots ...Slot) *Descriptor {
	if build == nil {
		return newDescriptor[I](name, Singleton, nil, slots)
	}

	return newDescriptor[I](name, Singleton, func(a Args) (any, Cleanup, error) {
		v, err := build(a)
		return v, nil, err
	}, slots)
}

// Returns Singleton descriptor of component `name` bound to interface I.
// Cleanup returned by build is called by Instance.Close.
func ComponentWithCleanup[I any](name ComponentID, build func(Args) (I, Cleanup, error), slots ...Slot) *Descriptor {
	if build == nil {
		return newDescriptor[I](name, Singleton, nil, slots)
	}

	return newDescriptor[I](name, Singleton, func(a Args) (any, Cleanup, error) {
		return build(a)
	}, slots)
}

// Returns Provider descriptor of component `name` bound to interface I.
// Every resolution builds a new instance, the caller owns it.
func Provider[I any](name ComponentID, build func(Args) (I, error), slots ...Slot) *Descriptor {
	if build == nil {
		return newDescriptor[I](name, Transient, nil, slots)
	}

	return newDescriptor[I](name, Transient, func(a Args) (any, Cleanup, error) {
		v, err := build(a)
		return v, nil, err
	}, slots)
}

func newDescriptor[I any](name ComponentID, lifetime Lifetime, build buildFunc, slots []Slot) *Descriptor {
	d := &Descriptor{
		name:     name,
		iface:    IDOf[I](),
		lifetime: lifetime,
		build:    build,
		slots:    make([]slotInfo, 0, len(slots)),
	}

	switch {
	case build == nil:
		d.err = newBadDescriptorError(name, ErrNilBuild)
	case !d.iface.isInterface():
		d.err = newNotAnInterfaceError(name, d.iface)
	}

	seen := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		info := slot.info()

		if _, ok := seen[info.name]; ok && d.err == nil {
			d.err = newDuplicateSlotError(name, info.name)
		}

		if info.kind == dependencySlot && !info.target.isInterface() && d.err == nil {
			d.err = newNotAnInterfaceError(name, info.target)
		}

		seen[info.name] = struct{}{}
		d.slots = append(d.slots, info)
	}

	return d
}

// Named sets request qualifier of a Provider descriptor.
// Several providers of the same interface can be registered under different qualifiers.
func (d *Descriptor) Named(qualifier string) *Descriptor {
	if d.lifetime != Transient && d.err == nil {
		d.err = newBadDescriptorError(d.name, ErrNamedSingleton)
	}

	d.qualifier = qualifier

	return d
}

// Uses declares that the component relies on generic type parameter `param`
// having every capability in `needs`.
func (d *Descriptor) Uses(param string, needs ...Capability) *Descriptor {
	d.uses = append(d.uses, paramUse{param: param, needs: needs})
	return d
}

func (d *Descriptor) Name() ComponentID {
	return d.name
}

func (d *Descriptor) Interface() InterfaceID {
	return d.iface
}

func (d *Descriptor) Lifetime() Lifetime {
	return d.lifetime
}

func (d *Descriptor) key() bindingKey {
	return bindingKey{iface: d.iface, qualifier: d.qualifier}
}

func (d *Descriptor) slot(name string) (slotInfo, bool) {
	for _, s := range d.slots {
		if s.name == name {
			return s, true
		}
	}

	return slotInfo{}, false
}
