package tinymod

import (
	"fmt"
	"strings"
)

var (
	ErrNilBuild           = fmt.Errorf("build function is nil")
	ErrNamedSingleton     = fmt.Errorf("only Provider can be registered under a qualifier")
	ErrNilDescriptor      = fmt.Errorf("descriptor is nil")
	ErrNilImport          = fmt.Errorf("imported definition is nil")
	ErrDuplicateTypeParam = fmt.Errorf("type parameter is declared twice")
	ErrInstanceClosed     = fmt.Errorf("instance is closed")
	ErrNilInstance        = fmt.Errorf("instance is nil")
)

func newBadDescriptorError(component ComponentID, cause error) error {
	return &BadDescriptorError{cause: cause, Component: component}
}

type BadDescriptorError struct {
	cause     error
	Component ComponentID
}

func (err *BadDescriptorError) Error() string {
	return fmt.Sprintf("bad descriptor %s: %s", err.Component, err.cause)
}

func (err *BadDescriptorError) Unwrap() error {
	return err.cause
}

func newBadModuleError(module string, cause error) error {
	return &BadModuleError{cause: cause, Module: module}
}

type BadModuleError struct {
	cause  error
	Module string
}

func (err *BadModuleError) Error() string {
	return fmt.Sprintf("bad module %s: %s", err.Module, err.cause)
}

func (err *BadModuleError) Unwrap() error {
	return err.cause
}

func newNotAnInterfaceError(component ComponentID, t InterfaceID) error {
	return &NotAnInterfaceError{Component: component, Type: t}
}

type NotAnInterfaceError struct {
	Component ComponentID
	Type      InterfaceID
}

func (err *NotAnInterfaceError) Error() string {
	return fmt.Sprintf("%s: %s is not an interface", err.Component, err.Type)
}

func newDuplicateSlotError(component ComponentID, slot string) error {
	return &DuplicateSlotError{Component: component, Slot: slot}
}

type DuplicateSlotError struct {
	Component ComponentID
	Slot      string
}

func (err *DuplicateSlotError) Error() string {
	return fmt.Sprintf("%s declares slot %q more than once", err.Component, err.Slot)
}

func newUndeclaredSlotError(component ComponentID, slot, typeName string) error {
	return &UndeclaredSlotError{Component: component, Slot: slot, Type: typeName}
}

type UndeclaredSlotError struct {
	Component ComponentID
	Slot      string
	Type      string
}

func (err *UndeclaredSlotError) Error() string {
	return fmt.Sprintf("slot %q of type %s is not declared by %s", err.Slot, err.Type, err.Component)
}

func newDuplicateComponentError(module string, component ComponentID) error {
	return &DuplicateComponentError{Module: module, Component: component}
}

type DuplicateComponentError struct {
	Module    string
	Component ComponentID
}

func (err *DuplicateComponentError) Error() string {
	return fmt.Sprintf("module %s: component %s is declared more than once", err.Module, err.Component)
}

func newDuplicateSingletonBindingError(module string, iface InterfaceID, first, second ComponentID) error {
	return &DuplicateSingletonBindingError{Module: module, Interface: iface, First: first, Second: second}
}

type DuplicateSingletonBindingError struct {
	Module    string
	First     ComponentID
	Second    ComponentID
	Interface InterfaceID
}

func (err *DuplicateSingletonBindingError) Error() string {
	return fmt.Sprintf(
		"module %s: %s is already bound to Singleton %s, cannot bind %s",
		err.Module, err.Interface, err.First, err.Second,
	)
}

func newDuplicateBindingError(module string, key bindingKey, first, second ComponentID) error {
	return &DuplicateBindingError{
		Module:    module,
		Interface: key.iface,
		Qualifier: key.qualifier,
		First:     first,
		Second:    second,
	}
}

type DuplicateBindingError struct {
	Module    string
	Qualifier string
	First     ComponentID
	Second    ComponentID
	Interface InterfaceID
}

func (err *DuplicateBindingError) Error() string {
	return fmt.Sprintf(
		"module %s: %s is already bound to %s, cannot bind %s",
		err.Module, bindingKey{err.Interface, err.Qualifier}, err.First, err.Second,
	)
}

func newAmbiguousBindingError(module string, key bindingKey, first, second ComponentID) error {
	return &AmbiguousBindingError{
		Module:    module,
		Interface: key.iface,
		Qualifier: key.qualifier,
		First:     first,
		Second:    second,
	}
}

type AmbiguousBindingError struct {
	Module    string
	Qualifier string
	First     ComponentID
	Second    ComponentID
	Interface InterfaceID
}

func (err *AmbiguousBindingError) Error() string {
	return fmt.Sprintf(
		"module %s: imports bind %s to both %s and %s, bind it locally to choose",
		err.Module, bindingKey{err.Interface, err.Qualifier}, err.First, err.Second,
	)
}

func newUnboundDependencyError(module string, component ComponentID, slot string, key bindingKey) error {
	return &UnboundDependencyError{
		Module:    module,
		Component: component,
		Slot:      slot,
		Interface: key.iface,
		Qualifier: key.qualifier,
	}
}

type UnboundDependencyError struct {
	Module    string
	Slot      string
	Qualifier string
	Component ComponentID
	Interface InterfaceID
}

func (err *UnboundDependencyError) Error() string {
	return fmt.Sprintf(
		"module %s: %s.%s depends on %s which is not bound",
		err.Module, err.Component, err.Slot, bindingKey{err.Interface, err.Qualifier},
	)
}

func newUnsatisfiedGenericBoundError(
	module string, component ComponentID, param string, missing []Capability, declared bool,
) error {
	return &UnsatisfiedGenericBoundError{
		Module:    module,
		Component: component,
		Param:     param,
		Missing:   missing,
		Declared:  declared,
	}
}

type UnsatisfiedGenericBoundError struct {
	Module    string
	Param     string
	Component ComponentID
	Missing   []Capability
	Declared  bool
}

func (err *UnsatisfiedGenericBoundError) Error() string {
	if !err.Declared {
		return fmt.Sprintf("module %s: %s uses undeclared type parameter %s", err.Module, err.Component, err.Param)
	}

	missing := make([]string, len(err.Missing))
	for i, c := range err.Missing {
		missing[i] = c.String()
	}

	return fmt.Sprintf(
		"module %s: %s needs type parameter %s to be %s",
		err.Module, err.Component, err.Param, strings.Join(missing, ", "),
	)
}

func newCyclicDependencyError(module string, cycle []InterfaceID) error {
	return &CyclicDependencyError{Module: module, Cycle: cycle}
}

type CyclicDependencyError struct {
	Module string
	Cycle  []InterfaceID
}

func (err *CyclicDependencyError) Error() string {
	names := make([]string, 0, len(err.Cycle)+1)
	for _, id := range err.Cycle {
		names = append(names, id.String())
	}

	if len(err.Cycle) > 0 {
		names = append(names, err.Cycle[0].String())
	}

	return fmt.Sprintf("module %s: dependency cycle %s", err.Module, strings.Join(names, " -> "))
}

func newMissingRequiredParameterError(component ComponentID, slot string) error {
	return &MissingRequiredParameterError{Component: component, Slot: slot}
}

type MissingRequiredParameterError struct {
	Component ComponentID
	Slot      string
}

func (err *MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("%s.%s has no default and was not supplied", err.Component, err.Slot)
}

func newParameterTypeError(component ComponentID, slot, expected string, got any) error {
	return &ParameterTypeError{Component: component, Slot: slot, Expected: expected, Got: fmt.Sprintf("%T", got)}
}

type ParameterTypeError struct {
	Component ComponentID
	Slot      string
	Expected  string
	Got       string
}

func (err *ParameterTypeError) Error() string {
	return fmt.Sprintf("%s.%s expects %s, got %s", err.Component, err.Slot, err.Expected, err.Got)
}

func newParametersDocumentError(cause error, component ComponentID, slot string) error {
	return &ParametersDocumentError{cause: cause, Component: component, Slot: slot}
}

type ParametersDocumentError struct {
	cause     error
	Component ComponentID
	Slot      string
}

func (err *ParametersDocumentError) Error() string {
	if err.Component == "" {
		return fmt.Sprintf("cannot read parameters document: %s", err.cause)
	}

	return fmt.Sprintf("cannot decode parameter %s.%s: %s", err.Component, err.Slot, err.cause)
}

func (err *ParametersDocumentError) Unwrap() error {
	return err.cause
}

func newForeignInstanceError(module, foreign string) error {
	return &ForeignInstanceError{Module: module, Foreign: foreign}
}

type ForeignInstanceError struct {
	Module  string
	Foreign string
}

func (err *ForeignInstanceError) Error() string {
	return fmt.Sprintf("module %s does not import %s", err.Module, err.Foreign)
}

func newUnboundInterfaceError(module string, key bindingKey) error {
	return &UnboundInterfaceError{Module: module, Interface: key.iface, Qualifier: key.qualifier}
}

type UnboundInterfaceError struct {
	Module    string
	Qualifier string
	Interface InterfaceID
}

func (err *UnboundInterfaceError) Error() string {
	return fmt.Sprintf("module %s: %s is not bound", err.Module, bindingKey{err.Interface, err.Qualifier})
}

func newComponentBuildFailedError(cause error, b *binding) error {
	return &ComponentBuildFailedError{
		cause:     cause,
		Interface: b.desc.iface,
		Component: b.desc.name,
		Lifetime:  b.desc.lifetime,
	}
}

type ComponentBuildFailedError struct {
	cause     error
	Component ComponentID
	Interface InterfaceID
	Lifetime  Lifetime
}

func (err *ComponentBuildFailedError) Error() string {
	return fmt.Sprintf("cannot build %s %s for %s: %s", err.Lifetime, err.Component, err.Interface, err.cause)
}

func (err *ComponentBuildFailedError) Unwrap() error {
	return err.cause
}

func newInternalError(reason string, component ComponentID) *InternalError {
	return &InternalError{Reason: reason, Component: component}
}

// InternalError means validation and resolution got out of sync.
// It is raised as a panic and is never returned.
type InternalError struct {
	Reason    string
	Component ComponentID
}

func (err *InternalError) Error() string {
	return fmt.Sprintf("tinymod internal error in %s: %s", err.Component, err.Reason)
}
