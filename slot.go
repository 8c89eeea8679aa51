package tinymod

import (
	"context"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

type slotKind int

const (
	dependencySlot slotKind = iota
	configSlot
)

func (k slotKind) String() string {
	if k == dependencySlot {
		return "dependency"
	}

	return "config"
}

// slotInfo is the type-erased view of a slot the engine works with.
type slotInfo struct {
	accepts   func(any) bool
	fallback  func() any
	decode    func(*yaml.Node) (any, error)
	name      string
	qualifier string
	typeName  string
	target    InterfaceID
	kind      slotKind
	external  bool
	required  bool
}

// mustBeSupplied reports whether the slot can only be filled by an override.
func (si slotInfo) mustBeSupplied() bool {
	return si.kind == dependencySlot && si.external || si.kind == configSlot && si.required
}

// Slot is a declared field of a component: either a dependency on another interface
// or a plain configuration value.
// This interface is sealed.
type Slot interface {
	Name() string
	info() slotInfo
}

// Args carries resolved slot values into a build function.
// Values are read with the typed accessors of the slots that were declared.
type Args struct {
	ctx       context.Context
	values    map[string]any
	component ComponentID
}

// Context returns context.Context the resolution was started with.
func (a Args) Context() context.Context {
	return a.ctx
}

// Component returns identity of the component being built.
func (a Args) Component() ComponentID {
	return a.component
}

func argValue[T any](a Args, name string) T {
	v, ok := a.values[name]
	if !ok {
		panic(newUndeclaredSlotError(a.component, name, typeName[T]()))
	}

	if v == nil {
		var zero T
		return zero
	}

	t, ok := v.(T)
	if !ok {
		panic(newUndeclaredSlotError(a.component, name, typeName[T]()))
	}

	return t
}

// Override is a caller-supplied value for a slot of a component.
type Override struct {
	Value     any
	Component ComponentID
	Slot      string
}

// DependencySlot declares that a component depends on interface I.
type DependencySlot[I any] struct {
	name      string
	qualifier string
	external  bool
}

// Returns dependency slot on I named `name`.
func Dependency[I any](name string) DependencySlot[I] {
	return DependencySlot[I]{name: name}
}

func (s DependencySlot[I]) Name() string {
	return s.name
}

// Qualified makes the slot resolve the Provider of I registered under qualifier q.
func (s DependencySlot[I]) Qualified(q string) DependencySlot[I] {
	s.qualifier = q
	return s
}

// External marks the slot as filled only by an override.
// Such slot is not resolved within the module and Builder.Build fails when it is not supplied.
func (s DependencySlot[I]) External() DependencySlot[I] {
	s.external = true
	return s
}

// From returns resolved dependency inside a build function.
func (s DependencySlot[I]) From(a Args) I {
	return argValue[I](a, s.name)
}

// Set returns Override that replaces this dependency of component with value.
func (s DependencySlot[I]) Set(component ComponentID, value I) Override {
	return Override{Component: component, Slot: s.name, Value: value}
}

func (s DependencySlot[I]) info() slotInfo {
	return slotInfo{
		name:      s.name,
		kind:      dependencySlot,
		target:    IDOf[I](),
		qualifier: s.qualifier,
		external:  s.external,
		typeName:  typeName[I](),
		accepts:   accepts[I],
		decode: func(*yaml.Node) (any, error) {
			return nil, fmt.Errorf("dependency slot %q cannot be decoded from a document", s.name)
		},
	}
}

// ConfigSlot declares a plain configuration value of type T.
// Unless told otherwise, its default is the zero value of T.
type ConfigSlot[T any] struct {
	fallback func() T
	name     string
	required bool
}

// Returns configuration slot named `name` defaulting to zero T.
func Config[T any](name string) ConfigSlot[T] {
	return ConfigSlot[T]{name: name}
}

func (s ConfigSlot[T]) Name() string {
	return s.name
}

// Default sets the value used when no override is supplied.
func (s ConfigSlot[T]) Default(value T) ConfigSlot[T] {
	s.fallback = func() T { return value }
	s.required = false

	return s
}

// DefaultFunc sets the function producing a value when no override is supplied.
// It is called once per build.
func (s ConfigSlot[T]) DefaultFunc(fn func() T) ConfigSlot[T] {
	s.fallback = fn
	s.required = false

	return s
}

// Required makes the slot have no default at all:
// Builder.Build fails with MissingRequiredParameterError if it is not overridden.
func (s ConfigSlot[T]) Required() ConfigSlot[T] {
	s.fallback = nil
	s.required = true

	return s
}

// From returns configured value inside a build function.
func (s ConfigSlot[T]) From(a Args) T {
	return argValue[T](a, s.name)
}

// Set returns Override that sets this slot of component to value.
func (s ConfigSlot[T]) Set(component ComponentID, value T) Override {
	return Override{Component: component, Slot: s.name, Value: value}
}

func (s ConfigSlot[T]) info() slotInfo {
	info := slotInfo{
		name:     s.name,
		kind:     configSlot,
		required: s.required,
		typeName: typeName[T](),
		accepts:  accepts[T],
		decode: func(node *yaml.Node) (any, error) {
			var v T
			if err := node.Decode(&v); err != nil {
				return nil, err
			}

			return v, nil
		},
	}

	switch {
	case s.required:
	case s.fallback != nil:
		fn := s.fallback
		info.fallback = func() any { return fn() }
	default:
		info.fallback = func() any {
			var zero T
			return zero
		}
	}

	return info
}

func accepts[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
