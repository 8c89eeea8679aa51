package tinymod

import (
	"slices"
	"sync"
	"sync/atomic"
)

// binding is a descriptor placed into the definition that registered it,
// with every resolvable dependency slot pointing at the binding that satisfies it.
type binding struct {
	desc  *Descriptor
	owner *Definition
	// deps is aligned with desc.slots: nil for config and external slots.
	deps []*binding
}

// Definition is a validated, immutable module:
// the bindings it declares, the bindings it sees through imports and nothing else.
type Definition struct {
	scope      map[bindingKey]*binding
	components map[ComponentID]*binding
	name       string
	local      []*binding
	imports    []*Definition
	params     []typeParam
	keys       []bindingKey
	// closure holds every binding reachable from this definition, imported ones included.
	closure []*binding
}

func (def *Definition) Name() string {
	return def.name
}

// Interfaces returns interfaces resolvable from this definition.
func (def *Definition) Interfaces() []InterfaceID {
	ids := make([]InterfaceID, 0, len(def.keys))
	for _, key := range def.keys {
		if !slices.Contains(ids, key.iface) {
			ids = append(ids, key.iface)
		}
	}

	return ids
}

func (def *Definition) owns(b *binding) bool {
	return slices.Contains(def.closure, b)
}

// Returns new ModuleBuilder for module `name`.
func Module(name string) *ModuleBuilder {
	return &ModuleBuilder{
		name: name,
		err:  &atomic.Value{},
	}
}

// ModuleBuilder accumulates descriptors, imports and type parameters of a module.
// The first registration error is kept and returned by Validate and Define.
type ModuleBuilder struct {
	err         *atomic.Value
	name        string
	descriptors []*Descriptor
	imports     []*Definition
	params      []typeParam
	mu          sync.RWMutex
}

// Register adds descriptors to the module.
func (m *ModuleBuilder) Register(descriptors ...*Descriptor) *ModuleBuilder {
	if errVal := m.err.Load(); errVal != nil {
		return m
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range descriptors {
		if err := m.canRegister(d); err != nil {
			m.err.Store(err)
			return m
		}

		m.descriptors = append(m.descriptors, d)
	}

	return m
}

func (m *ModuleBuilder) canRegister(d *Descriptor) error {
	if d == nil {
		return newBadModuleError(m.name, ErrNilDescriptor)
	}

	if d.err != nil {
		return d.err
	}

	for _, registered := range m.descriptors {
		switch {
		case registered.name == d.name:
			return newDuplicateComponentError(m.name, d.name)
		case registered.iface == d.iface && registered.lifetime == Singleton && d.lifetime == Singleton:
			return newDuplicateSingletonBindingError(m.name, d.iface, registered.name, d.name)
		case registered.key() == d.key():
			return newDuplicateBindingError(m.name, d.key(), registered.name, d.name)
		}
	}

	return nil
}

// Import makes bindings of other definitions visible to this module.
// Local bindings shadow imported ones.
func (m *ModuleBuilder) Import(defs ...*Definition) *ModuleBuilder {
	if errVal := m.err.Load(); errVal != nil {
		return m
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, def := range defs {
		if def == nil {
			m.err.Store(newBadModuleError(m.name, ErrNilImport))
			return m
		}

		if !slices.Contains(m.imports, def) {
			m.imports = append(m.imports, def)
		}
	}

	return m
}

// TypeParam declares generic type parameter `name` of the module with its bound set.
func (m *ModuleBuilder) TypeParam(name string, bounds ...Capability) *ModuleBuilder {
	if errVal := m.err.Load(); errVal != nil {
		return m
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.params {
		if p.name == name {
			m.err.Store(newBadModuleError(m.name, ErrDuplicateTypeParam))
			return m
		}
	}

	m.params = append(m.params, typeParam{name: name, bounds: bounds})

	return m
}

// Validate runs every definition-time check without producing a Definition.
func (m *ModuleBuilder) Validate() error {
	_, err := m.Define()
	return err
}

// Define validates the module and returns its immutable Definition.
// Nothing is returned for a module that is not entirely valid.
func (m *ModuleBuilder) Define() (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if errVal := m.err.Load(); errVal != nil {
		return nil, errVal.(error)
	}

	for _, d := range m.descriptors {
		if err := checkBounds(m.name, m.params, d); err != nil {
			return nil, err
		}
	}

	def := &Definition{
		name:       m.name,
		imports:    slices.Clone(m.imports),
		params:     slices.Clone(m.params),
		scope:      make(map[bindingKey]*binding),
		components: make(map[ComponentID]*binding),
	}

	ambiguous := make(map[bindingKey][2]*binding)
	for _, imported := range def.imports {
		for _, key := range imported.keys {
			b := imported.scope[key]
			seen, ok := def.scope[key]

			switch {
			case !ok:
				def.scope[key] = b
				def.keys = append(def.keys, key)
			case seen != b:
				ambiguous[key] = [2]*binding{seen, b}
			}
		}
	}

	for _, d := range m.descriptors {
		b := &binding{desc: d, owner: def, deps: make([]*binding, len(d.slots))}
		key := d.key()

		if _, ok := def.scope[key]; !ok {
			def.keys = append(def.keys, key)
		}

		def.scope[key] = b
		def.local = append(def.local, b)
		delete(ambiguous, key)
	}

	for _, key := range def.keys {
		if pair, ok := ambiguous[key]; ok {
			return nil, newAmbiguousBindingError(m.name, key, pair[0].desc.name, pair[1].desc.name)
		}
	}

	for _, b := range def.local {
		for i, slot := range b.desc.slots {
			if slot.kind != dependencySlot || slot.external {
				continue
			}

			key := bindingKey{iface: slot.target, qualifier: slot.qualifier}
			target, ok := def.scope[key]
			if !ok {
				return nil, newUnboundDependencyError(m.name, b.desc.name, slot.name, key)
			}

			b.deps[i] = target
		}
	}

	for _, imported := range def.imports {
		for _, b := range imported.closure {
			if !slices.Contains(def.closure, b) {
				def.closure = append(def.closure, b)
			}
		}
	}

	def.closure = append(def.closure, def.local...)

	for _, b := range def.closure {
		if seen, ok := def.components[b.desc.name]; ok && seen != b {
			return nil, newDuplicateComponentError(m.name, b.desc.name)
		}

		def.components[b.desc.name] = b
	}

	if err := validateGraph(m.name, def.closure); err != nil {
		return nil, err
	}

	return def, nil
}

// MustDefine is like Define but panics if the module is not valid.
func (m *ModuleBuilder) MustDefine() *Definition {
	def, err := m.Define()
	if err != nil {
		panic(err)
	}

	return def
}
