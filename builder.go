package tinymod

import (
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Builder layers caller-supplied parameters over the defaults of a Definition
// and produces an Instance.
// Accumulating methods never fail, errors are reported by Build.
type Builder struct {
	err       error
	def       *Definition
	log       *zap.Logger
	observer  Observer
	overrides []Override
	documents []parameterDocument
	instances []*Instance
	mu        sync.Mutex
}

// Builder returns new Builder for def.
func (def *Definition) Builder() *Builder {
	return &Builder{def: def}
}

// WithParameter overrides slot of component with value.
// Value must be of the slot type, it is checked by Build.
func (b *Builder) WithParameter(component ComponentID, slot string, value any) *Builder {
	return b.With(Override{Component: component, Slot: slot, Value: value})
}

// With records overrides built with typed slot setters.
// A later override of the same slot wins.
func (b *Builder) With(overrides ...Override) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.overrides = append(b.overrides, overrides...)

	return b
}

// WithParametersYAML reads configuration slot values from YAML documents
// keyed by component and slot name.
// Overrides given by WithParameter and With take precedence.
func (b *Builder) WithParametersYAML(r io.Reader) *Builder {
	docs, err := readParameterDocuments(r)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		if b.err == nil {
			b.err = err
		}

		return b
	}

	b.documents = append(b.documents, docs...)

	return b
}

// WithInstance lets inst serve every binding of its definition.
// Definition of inst must be imported, directly or not, by the built definition.
// Singletons of inst are shared instead of being built again.
func (b *Builder) WithInstance(inst *Instance) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.instances = append(b.instances, inst)

	return b
}

func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.log = l

	return b
}

func (b *Builder) WithObserver(o Observer) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.observer = o

	return b
}

// Build checks that every slot without default is supplied and returns new Instance.
// No component is built here, construction happens on first resolution.
func (b *Builder) Build() (*Instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return nil, b.err
	}

	log := b.log
	if log == nil {
		log = logger()
	}

	id := uuid.New()
	log = log.With(zap.String("module", b.def.name), zap.Stringer("instance", id))

	delegates, err := b.delegates()
	if err != nil {
		return nil, err
	}

	overrides, err := b.collectOverrides(log, delegates)
	if err != nil {
		return nil, err
	}

	cells := make(map[*binding]*singletonCell)
	for _, bind := range b.def.closure {
		if _, ok := delegates[bind]; ok {
			continue
		}

		supplied := overrides[bind.desc.name]
		for _, slot := range bind.desc.slots {
			if _, ok := supplied[slot.name]; !ok && slot.mustBeSupplied() {
				return nil, newMissingRequiredParameterError(bind.desc.name, slot.name)
			}
		}

		if bind.desc.lifetime == Singleton {
			cells[bind] = &singletonCell{}
		}
	}

	observer := b.observer
	if observer == nil {
		observer = nopObserver{}
	}

	log.Debug("module instance built", zap.Int("overrides", len(overrides)), zap.Int("delegates", len(b.instances)))

	return &Instance{
		id:        id,
		def:       b.def,
		log:       log,
		observer:  observer,
		overrides: overrides,
		cells:     cells,
		delegates: delegates,
	}, nil
}

func (b *Builder) delegates() (map[*binding]*Instance, error) {
	delegates := make(map[*binding]*Instance)
	imported := transitiveImports(b.def)

	for _, inst := range b.instances {
		if inst == nil {
			return nil, newBadModuleError(b.def.name, ErrNilInstance)
		}

		if !slices.Contains(imported, inst.def) {
			return nil, newForeignInstanceError(b.def.name, inst.def.name)
		}

		for _, bind := range inst.def.closure {
			if _, ok := delegates[bind]; !ok {
				delegates[bind] = inst
			}
		}
	}

	return delegates, nil
}

// collectOverrides merges documents and explicit overrides into one map,
// checking every value against its slot.
func (b *Builder) collectOverrides(
	log *zap.Logger, delegates map[*binding]*Instance,
) (map[ComponentID]map[string]any, error) {
	result := make(map[ComponentID]map[string]any)

	slotOf := func(component ComponentID, name string) (slotInfo, bool) {
		bind, ok := b.def.components[component]
		if !ok {
			log.Warn("override ignored: unknown component", zap.String("component", string(component)))
			return slotInfo{}, false
		}

		if _, ok := delegates[bind]; ok {
			log.Warn("override ignored: component is served by an imported instance",
				zap.String("component", string(component)))
			return slotInfo{}, false
		}

		slot, ok := bind.desc.slot(name)
		if !ok {
			log.Warn("override ignored: unknown slot",
				zap.String("component", string(component)), zap.String("slot", name))
			return slotInfo{}, false
		}

		return slot, true
	}

	set := func(component ComponentID, name string, value any) {
		if result[component] == nil {
			result[component] = make(map[string]any)
		}

		result[component][name] = value
	}

	for _, doc := range b.documents {
		for component, slots := range doc {
			for name, node := range slots {
				slot, ok := slotOf(component, name)
				if !ok {
					continue
				}

				value, err := slot.decode(&node)
				if err != nil {
					return nil, newParametersDocumentError(err, component, name)
				}

				set(component, name, value)
			}
		}
	}

	for _, o := range b.overrides {
		slot, ok := slotOf(o.Component, o.Slot)
		if !ok {
			continue
		}

		if !slot.accepts(o.Value) {
			return nil, newParameterTypeError(o.Component, o.Slot, slot.typeName, o.Value)
		}

		set(o.Component, o.Slot, o.Value)
	}

	return result, nil
}

func transitiveImports(def *Definition) []*Definition {
	result := make([]*Definition, 0, len(def.imports))

	var walk func(*Definition)
	walk = func(d *Definition) {
		for _, imported := range d.imports {
			if slices.Contains(result, imported) {
				continue
			}

			result = append(result, imported)
			walk(imported)
		}
	}

	walk(def)

	return result
}
