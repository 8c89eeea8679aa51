// Package digbridge hands components of a tinymod Instance to a dig container,
// so code wired with go.uber.org/dig can depend on them.
package digbridge

import (
	"context"

	"go.uber.org/dig"

	"github.com/andriiyaremenko/tinymod"
)

// Provide registers in c a constructor of I that resolves I shared from inst.
// A Singleton stays the one instance of inst, dig only caches the handle.
// dig calls the constructor lazily, ctx is what build functions see in Args.Context
// whenever that happens.
func Provide[I any](ctx context.Context, c *dig.Container, inst *tinymod.Instance, opts ...dig.ProvideOption) error {
	return c.Provide(func() (I, error) {
		return tinymod.ResolveShared[I](ctx, inst)
	}, opts...)
}

// ProvideNamed is like Provide for the Provider registered under qualifier.
// The value is exposed to dig under name qualifier.
func ProvideNamed[I any](ctx context.Context, c *dig.Container, inst *tinymod.Instance, qualifier string) error {
	return c.Provide(func() (I, error) {
		return tinymod.ResolveShared[I](ctx, inst, tinymod.Qualified(qualifier))
	}, dig.Name(qualifier))
}
