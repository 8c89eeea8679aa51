/*
This package composes components into modules and resolves them by interface.
A module declares which implementation backs which interface, the engine checks
that every dependency is bound and that nothing depends on itself before anything is built,
then builds components lazily when they are asked for.

To install tinymod:

	go get -u github.com/andriiyaremenko/tinymod

How to use:

	type Sink interface {
		Write(string)
	}

	type Logger interface {
		Log(string)
	}

	var (
		sinkSlot  = tinymod.Dependency[Sink]("sink")
		levelSlot = tinymod.Config[string]("level").Default("info")
	)

	def, err := tinymod.Module("M").
		Register(
			tinymod.Component[Sink]("ConsoleSink", func(tinymod.Args) (Sink, error) {
				return consoleSink{}, nil
			}),
			tinymod.Component[Logger]("LoggerImpl", func(a tinymod.Args) (Logger, error) {
				return &loggerImpl{sink: sinkSlot.From(a), level: levelSlot.From(a)}, nil
			}, sinkSlot, levelSlot),
		).
		Define()
	if err != nil {
		// handle error
	}

	inst, err := def.Builder().
		With(levelSlot.Set("LoggerImpl", "debug")).
		Build()
	if err != nil {
		// handle error
	}

	logger, err := tinymod.ResolveShared[Logger](ctx, inst)

Lifetime constants:

	tinymod.Singleton - built once per Instance
	tinymod.Transient - built on every resolution, lifetime of tinymod.Provider descriptors

Slots:
  - tinymod.Dependency[I](name) - dependency on interface I, optionally Qualified or External
  - tinymod.Config[T](name) - plain value, with Default, DefaultFunc or Required

Generic modules are plain generic functions returning *Definition.
Their type parameters are declared with ModuleBuilder.TypeParam and the capabilities
components rely on with Descriptor.Uses; both are checked when the module is defined:

	func LogModule[C Connection]() (*tinymod.Definition, error) {
		return tinymod.Module("LogModule").
			TypeParam("C", tinymod.Implements[Connection](), tinymod.Shareable).
			Register(logServiceDescriptor[C]().Uses("C", tinymod.Implements[Connection]())).
			Define()
	}

Functions:
  - tinymod.Module
  - tinymod.Component
  - tinymod.ComponentWithCleanup
  - tinymod.Provider
  - tinymod.ResolveShared
  - tinymod.MustResolveShared
  - tinymod.ResolveExclusive
  - tinymod.SetDefaultLogger
*/
package tinymod
