package tinymod

import "slices"

type capabilityKind int

const (
	implementsCapability capabilityKind = iota
	defaultConstructibleCapability
	shareableCapability
)

// Capability is a requirement placed on a generic type parameter of a module.
type Capability struct {
	iface InterfaceID
	kind  capabilityKind
}

var (
	// DefaultConstructible: zero value of the type argument is usable.
	DefaultConstructible = Capability{kind: defaultConstructibleCapability}
	// Shareable: the type argument is safe to share across resolution boundaries.
	Shareable = Capability{kind: shareableCapability}
)

// Implements: the type argument implements interface I.
func Implements[I any]() Capability {
	return Capability{kind: implementsCapability, iface: IDOf[I]()}
}

func (c Capability) String() string {
	switch c.kind {
	case implementsCapability:
		return "implements " + c.iface.String()
	case defaultConstructibleCapability:
		return "default-constructible"
	default:
		return "shareable"
	}
}

type typeParam struct {
	name   string
	bounds []Capability
}

type paramUse struct {
	param string
	needs []Capability
}

// checkBounds verifies every parameter use of d against the declared bound sets.
// It never looks at a type argument, so its result holds for every instantiation.
func checkBounds(module string, params []typeParam, d *Descriptor) error {
	for _, use := range d.uses {
		i := slices.IndexFunc(params, func(p typeParam) bool { return p.name == use.param })
		if i < 0 {
			return newUnsatisfiedGenericBoundError(module, d.name, use.param, use.needs, false)
		}

		missing := make([]Capability, 0)
		for _, need := range use.needs {
			if !slices.Contains(params[i].bounds, need) {
				missing = append(missing, need)
			}
		}

		if len(missing) > 0 {
			return newUnsatisfiedGenericBoundError(module, d.name, use.param, missing, true)
		}
	}

	return nil
}
