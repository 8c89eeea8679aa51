package tinymod

import "strconv"

// Lifetime decides how often a bound component is constructed within one Instance.
type Lifetime int

const (
	// For `Singleton` component the same instance is returned for every resolution
	// from the same Instance.
	Singleton Lifetime = iota
	// For `Transient` component a new instance is built on every resolution.
	// Descriptors made with Provider have this lifetime.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Transient:
		return "Transient"
	default:
		return "Lifetime(" + strconv.Itoa(int(l)) + ")"
	}
}
