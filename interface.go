package tinymod

import "reflect"

// InterfaceID identifies an interface type used as a resolution key.
// The zero value identifies nothing.
type InterfaceID struct {
	t reflect.Type
}

// Returns InterfaceID of I.
// I is expected to be an interface type, it is checked when a descriptor is registered.
func IDOf[I any]() InterfaceID {
	return InterfaceID{t: reflect.TypeFor[I]()}
}

func (id InterfaceID) String() string {
	if id.t == nil {
		return "<nil>"
	}

	return id.t.String()
}

func (id InterfaceID) isInterface() bool {
	return id.t != nil && id.t.Kind() == reflect.Interface
}

// bindingKey is what a module scope is keyed by:
// providers of the same interface are told apart by qualifier.
type bindingKey struct {
	iface     InterfaceID
	qualifier string
}

func (k bindingKey) String() string {
	if k.qualifier == "" {
		return k.iface.String()
	}

	return k.iface.String() + "(" + k.qualifier + ")"
}
