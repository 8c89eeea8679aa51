package tinymod_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andriiyaremenko/tinymod"
)

var _ = Describe("Instance", func() {
	var (
		ctx context.Context
		log *buildLog
		def *tinymod.Definition
	)

	BeforeEach(func() {
		ctx = context.Background()
		log = new(buildLog)
		def = tinymod.Module("M").
			Register(loggerDescriptor(log), sinkDescriptor(log)).
			MustDefine()
	})

	It("should build nothing until first resolution", func() {
		_, err := def.Builder().Build()

		Expect(err).ShouldNot(HaveOccurred())
		Expect(log.all()).To(BeEmpty())
	})

	It("should build dependencies before dependants", func() {
		inst, err := def.Builder().Build()
		Expect(err).ShouldNot(HaveOccurred())

		logger, err := tinymod.ResolveShared[Logger](ctx, inst)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(logger.Level()).To(Equal("info"))
		Expect(log.all()).To(Equal([]tinymod.ComponentID{"ConsoleSink", "LoggerImpl"}))
	})

	It("should return the same Singleton on every resolution", func() {
		inst, err := def.Builder().Build()
		Expect(err).ShouldNot(HaveOccurred())

		logger1 := tinymod.MustResolveShared[Logger](ctx, inst)
		logger2 := tinymod.MustResolveShared[Logger](ctx, inst)
		sink := tinymod.MustResolveShared[Sink](ctx, inst)

		Expect(logger1).To(BeIdenticalTo(logger2))
		Expect(log.all()).To(HaveLen(2))

		logger1.Log("hello")
		Expect(sink.Lines()).To(Equal([]string{"INFO hello"}))
	})

	It("should not share Singletons between instances", func() {
		inst1, err := def.Builder().Build()
		Expect(err).ShouldNot(HaveOccurred())

		inst2, err := def.Builder().Build()
		Expect(err).ShouldNot(HaveOccurred())

		Expect(inst1.ID()).NotTo(Equal(inst2.ID()))
		Expect(tinymod.MustResolveShared[Sink](ctx, inst1)).
			NotTo(BeIdenticalTo(tinymod.MustResolveShared[Sink](ctx, inst2)))
	})

	It("should return error for interface not bound", func() {
		inst, err := def.Builder().Build()
		Expect(err).ShouldNot(HaveOccurred())

		_, err = tinymod.ResolveShared[A](ctx, inst)

		Expect(err).Should(BeAssignableToTypeOf(new(tinymod.UnboundInterfaceError)))
	})

	It("should return error for nil Instance", func() {
		_, err := tinymod.ResolveShared[Logger](ctx, nil)

		Expect(err).Should(MatchError(tinymod.ErrNilInstance))
	})

	Context("providers", func() {
		It("should build new value on every resolution", func() {
			inst, err := tinymod.Module("P").
				Register(tinymod.Provider[Connection]("PgConn", func(tinymod.Args) (Connection, error) {
					log.add("PgConn")
					return new(pgConn), nil
				})).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			conn1 := tinymod.MustResolveShared[Connection](ctx, inst)
			conn2 := tinymod.MustResolveShared[Connection](ctx, inst)

			Expect(conn1).NotTo(BeIdenticalTo(conn2))
			Expect(log.all()).To(Equal([]tinymod.ComponentID{"PgConn", "PgConn"}))
		})

		It("should resolve Provider by qualifier", func() {
			inst, err := tinymod.Module("P").
				Register(
					tinymod.Provider[A]("First", func(tinymod.Args) (A, error) { return letter("a1"), nil }).Named("first"),
					tinymod.Provider[A]("Second", func(tinymod.Args) (A, error) { return letter("a2"), nil }).Named("second"),
				).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			first, err := tinymod.ResolveShared[A](ctx, inst, tinymod.Qualified("first"))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(first.A()).To(Equal("a1"))

			second, err := tinymod.ResolveShared[A](ctx, inst, tinymod.Qualified("second"))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(second.A()).To(Equal("a2"))

			_, err = tinymod.ResolveShared[A](ctx, inst)
			Expect(err).Should(BeAssignableToTypeOf(new(tinymod.UnboundInterfaceError)))
		})

		It("should fill qualified dependency slot", func() {
			aSlot := tinymod.Dependency[A]("a").Qualified("second")
			inst, err := tinymod.Module("P").
				Register(
					tinymod.Provider[A]("First", func(tinymod.Args) (A, error) { return letter("a1"), nil }).Named("first"),
					tinymod.Provider[A]("Second", func(tinymod.Args) (A, error) { return letter("a2"), nil }).Named("second"),
					tinymod.Component[B]("BImpl", func(a tinymod.Args) (B, error) {
						return letter("b+" + aSlot.From(a).A()), nil
					}, aSlot),
				).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			b, err := tinymod.ResolveShared[B](ctx, inst)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(b.B()).To(Equal("b+a2"))
		})

		It("should see the resolution context", func() {
			type key struct{}

			inst, err := tinymod.Module("P").
				Register(tinymod.Provider[A]("FromContext", func(a tinymod.Args) (A, error) {
					return letter(a.Context().Value(key{}).(string)), nil
				})).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			a, err := tinymod.ResolveShared[A](context.WithValue(ctx, key{}, "request-1"), inst)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(a.A()).To(Equal("request-1"))
		})
	})

	Context("overrides", func() {
		It("should use typed override of config slot", func() {
			inst, err := def.Builder().
				With(levelSlot.Set("LoggerImpl", "debug")).
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[Logger](ctx, inst).Level()).To(Equal("debug"))
		})

		It("should let the later override win", func() {
			inst, err := def.Builder().
				WithParameter("LoggerImpl", "level", "debug").
				WithParameter("LoggerImpl", "level", "error").
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[Logger](ctx, inst).Level()).To(Equal("error"))
		})

		It("should refuse override of wrong type", func() {
			_, err := def.Builder().
				WithParameter("LoggerImpl", "level", 42).
				Build()

			Expect(err).Should(BeAssignableToTypeOf(new(tinymod.ParameterTypeError)))
		})

		It("should replace dependency with override and skip its binding", func() {
			sink := new(consoleSink)
			inst, err := def.Builder().
				With(sinkSlot.Set("LoggerImpl", sink)).
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			tinymod.MustResolveShared[Logger](ctx, inst).Log("overridden")

			Expect(sink.Lines()).To(Equal([]string{"INFO overridden"}))
			Expect(log.all()).To(Equal([]tinymod.ComponentID{"LoggerImpl"}))
		})

		It("should log and ignore override of unknown component", func() {
			core, logs := observer.New(zapcore.WarnLevel)

			inst, err := def.Builder().
				WithLogger(zap.New(core)).
				WithParameter("Nobody", "level", "debug").
				WithParameter("LoggerImpl", "volume", 11).
				Build()

			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst).NotTo(BeNil())
			Expect(logs.FilterMessage("override ignored: unknown component").Len()).To(Equal(1))
			Expect(logs.FilterMessage("override ignored: unknown slot").Len()).To(Equal(1))
		})

		It("should require override of external dependency", func() {
			external := tinymod.Dependency[Sink]("sink").External()
			ext := tinymod.Module("E").
				Register(tinymod.Component[Logger]("LoggerImpl", func(a tinymod.Args) (Logger, error) {
					return &loggerImpl{sink: external.From(a), level: "info"}, nil
				}, external)).
				MustDefine()

			_, err := ext.Builder().Build()

			var missing *tinymod.MissingRequiredParameterError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Component).To(Equal(tinymod.ComponentID("LoggerImpl")))
			Expect(missing.Slot).To(Equal("sink"))

			sink := new(consoleSink)
			inst, err := ext.Builder().With(external.Set("LoggerImpl", sink)).Build()
			Expect(err).ShouldNot(HaveOccurred())

			tinymod.MustResolveShared[Logger](ctx, inst).Log("external")
			Expect(sink.Lines()).To(Equal([]string{"INFO external"}))
		})

		It("should use DefaultFunc on every build", func() {
			calls := 0
			counter := tinymod.Config[int]("n").DefaultFunc(func() int {
				calls++
				return calls
			})

			inst, err := tinymod.Module("P").
				Register(tinymod.Provider[A]("Counter", func(a tinymod.Args) (A, error) {
					return letter(strings.Repeat("x", counter.From(a))), nil
				}, counter)).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[A](ctx, inst).A()).To(Equal("x"))
			Expect(tinymod.MustResolveShared[A](ctx, inst).A()).To(Equal("xx"))
		})

		It("should use zero value of config slot without default", func() {
			retries := tinymod.Config[int]("retries")

			inst, err := tinymod.Module("P").
				Register(tinymod.Component[A]("Retrier", func(a tinymod.Args) (A, error) {
					return letter(strings.Repeat("r", retries.From(a)+1)), nil
				}, retries)).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[A](ctx, inst).A()).To(Equal("r"))
		})
	})

	Context("parameters document", func() {
		It("should read config slots from YAML", func() {
			inst, err := def.Builder().
				WithParametersYAML(strings.NewReader("LoggerImpl:\n  level: warn\n")).
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[Logger](ctx, inst).Level()).To(Equal("warn"))
		})

		It("should prefer explicit override to YAML", func() {
			inst, err := def.Builder().
				WithParameter("LoggerImpl", "level", "error").
				WithParametersYAML(strings.NewReader("LoggerImpl:\n  level: warn\n")).
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[Logger](ctx, inst).Level()).To(Equal("error"))
		})

		It("should let the later document win", func() {
			inst, err := def.Builder().
				WithParametersYAML(strings.NewReader("LoggerImpl:\n  level: warn\n---\nLoggerImpl:\n  level: trace\n")).
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[Logger](ctx, inst).Level()).To(Equal("trace"))
		})

		It("should refuse malformed document", func() {
			_, err := def.Builder().
				WithParametersYAML(strings.NewReader("LoggerImpl: [level")).
				Build()

			Expect(err).Should(BeAssignableToTypeOf(new(tinymod.ParametersDocumentError)))
		})

		It("should refuse value not decodable into slot type", func() {
			_, err := def.Builder().
				WithParametersYAML(strings.NewReader("LoggerImpl:\n  level: [a, b]\n")).
				Build()

			var docErr *tinymod.ParametersDocumentError
			Expect(errors.As(err, &docErr)).To(BeTrue())
			Expect(docErr.Component).To(Equal(tinymod.ComponentID("LoggerImpl")))
			Expect(docErr.Slot).To(Equal("level"))
		})
	})

	Context("build failure", func() {
		It("should wrap error of build function and retry on next resolution", func() {
			cause := errors.New("connection refused")
			attempts := 0

			inst, err := tinymod.Module("F").
				Register(tinymod.Component[A]("Flaky", func(tinymod.Args) (A, error) {
					attempts++
					if attempts == 1 {
						return nil, cause
					}

					return letter("ok"), nil
				})).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			_, err = tinymod.ResolveShared[A](ctx, inst)

			Expect(err).Should(BeAssignableToTypeOf(new(tinymod.ComponentBuildFailedError)))
			Expect(errors.Is(err, cause)).To(BeTrue())

			a, err := tinymod.ResolveShared[A](ctx, inst)

			Expect(err).ShouldNot(HaveOccurred())
			Expect(a.A()).To(Equal("ok"))
			Expect(attempts).To(Equal(2))
		})

		It("should report the component that failed deep in the graph", func() {
			inst, err := tinymod.Module("F").
				Register(
					loggerDescriptor(log),
					tinymod.Component[Sink]("BrokenSink", func(tinymod.Args) (Sink, error) {
						return nil, errors.New("disk full")
					}),
				).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			_, err = tinymod.ResolveShared[Logger](ctx, inst)

			var failed *tinymod.ComponentBuildFailedError
			Expect(errors.As(err, &failed)).To(BeTrue())
			Expect(failed.Component).To(Equal(tinymod.ComponentID("BrokenSink")))
			Expect(failed.Interface).To(Equal(tinymod.IDOf[Sink]()))
			Expect(log.all()).To(BeEmpty())
		})

		It("should recover from panic in build function", func() {
			inst, err := tinymod.Module("F").
				Register(tinymod.Component[A]("Panicky", func(tinymod.Args) (A, error) {
					panic("boom")
				})).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			_, err = tinymod.ResolveShared[A](ctx, inst)

			Expect(err).Should(BeAssignableToTypeOf(new(tinymod.ComponentBuildFailedError)))
			Expect(err.Error()).To(ContainSubstring("boom"))
		})

		It("should panic with UndeclaredSlotError reading slot not declared", func() {
			undeclared := tinymod.Config[string]("undeclared")
			inst, err := tinymod.Module("F").
				Register(tinymod.Component[A]("Careless", func(a tinymod.Args) (A, error) {
					return letter(undeclared.From(a)), nil
				})).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			_, err = tinymod.ResolveShared[A](ctx, inst)

			var undeclaredErr *tinymod.UndeclaredSlotError
			Expect(errors.As(err, &undeclaredErr)).To(BeTrue())
		})
	})

	Context("observer", func() {
		It("should be notified of every build", func() {
			events := make([]tinymod.BuildEvent, 0)

			inst, err := def.Builder().
				WithObserver(tinymod.ObserverFunc(func(e tinymod.BuildEvent) {
					events = append(events, e)
				})).
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			tinymod.MustResolveShared[Logger](ctx, inst)
			tinymod.MustResolveShared[Logger](ctx, inst)

			Expect(events).To(HaveLen(2))
			Expect(events[0].Component).To(Equal(tinymod.ComponentID("ConsoleSink")))
			Expect(events[1].Component).To(Equal(tinymod.ComponentID("LoggerImpl")))
			Expect(events[1].Module).To(Equal("M"))
			Expect(events[1].Lifetime).To(Equal(tinymod.Singleton))
			Expect(events[1].Err).ShouldNot(HaveOccurred())
		})
	})

	Context("exclusive access", func() {
		It("should share one lock between handles of a Singleton", func() {
			inst, err := def.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			h1, err := tinymod.ResolveExclusive[Sink](ctx, inst)
			Expect(err).ShouldNot(HaveOccurred())

			h2, err := tinymod.ResolveExclusive[Sink](ctx, inst)
			Expect(err).ShouldNot(HaveOccurred())

			sink := h1.Lock()
			acquired := make(chan struct{})

			go func() {
				defer close(acquired)

				h2.Lock().Write("second")
				h2.Unlock()
			}()

			Consistently(acquired).ShouldNot(BeClosed())

			sink.Write("first")
			h1.Unlock()

			Eventually(acquired).Should(BeClosed())
			Expect(tinymod.MustResolveShared[Sink](ctx, inst).Lines()).To(Equal([]string{"first", "second"}))
		})

		It("should run Do holding the lock", func() {
			inst, err := def.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			h, err := tinymod.ResolveExclusive[Logger](ctx, inst)
			Expect(err).ShouldNot(HaveOccurred())

			err = h.Do(func(l Logger) error {
				l.Log("inside")
				return errors.New("done")
			})

			Expect(err).Should(MatchError("done"))
			Expect(tinymod.MustResolveShared[Sink](ctx, inst).Lines()).To(Equal([]string{"INFO inside"}))
		})
	})

	Context("close", func() {
		var released []tinymod.ComponentID

		BeforeEach(func() {
			released = nil
			def = tinymod.Module("C").
				Register(
					tinymod.ComponentWithCleanup[Sink]("ConsoleSink", func(tinymod.Args) (Sink, tinymod.Cleanup, error) {
						return new(consoleSink), func() { released = append(released, "ConsoleSink") }, nil
					}),
					tinymod.ComponentWithCleanup[Logger]("LoggerImpl", func(a tinymod.Args) (Logger, tinymod.Cleanup, error) {
						return &loggerImpl{sink: sinkSlot.From(a)}, func() { released = append(released, "LoggerImpl") }, nil
					}, sinkSlot),
				).
				MustDefine()
		})

		It("should release dependants before dependencies", func() {
			inst, err := def.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			tinymod.MustResolveShared[Logger](ctx, inst)

			Expect(inst.Close()).To(Succeed())
			Expect(released).To(Equal([]tinymod.ComponentID{"LoggerImpl", "ConsoleSink"}))
		})

		It("should release only what was built", func() {
			inst, err := def.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			tinymod.MustResolveShared[Sink](ctx, inst)

			Expect(inst.Close()).To(Succeed())
			Expect(released).To(Equal([]tinymod.ComponentID{"ConsoleSink"}))
		})

		It("should be idempotent and refuse resolution afterwards", func() {
			inst, err := def.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			tinymod.MustResolveShared[Logger](ctx, inst)

			Expect(inst.Close()).To(Succeed())
			Expect(inst.Close()).To(Succeed())
			Expect(released).To(HaveLen(2))

			_, err = tinymod.ResolveShared[Logger](ctx, inst)
			Expect(err).Should(MatchError(tinymod.ErrInstanceClosed))
		})

		It("should run every cleanup even if one panics", func() {
			inst, err := tinymod.Module("C").
				Register(
					tinymod.ComponentWithCleanup[Sink]("ConsoleSink", func(tinymod.Args) (Sink, tinymod.Cleanup, error) {
						return new(consoleSink), func() { released = append(released, "ConsoleSink") }, nil
					}),
					tinymod.ComponentWithCleanup[Logger]("LoggerImpl", func(a tinymod.Args) (Logger, tinymod.Cleanup, error) {
						return &loggerImpl{sink: sinkSlot.From(a)}, func() { panic("cannot flush") }, nil
					}, sinkSlot),
				).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			tinymod.MustResolveShared[Logger](ctx, inst)

			err = inst.Close()

			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("cannot flush"))
			Expect(released).To(Equal([]tinymod.ComponentID{"ConsoleSink"}))
		})

		It("should release component whose build outlived Close", func() {
			started := make(chan struct{})
			proceed := make(chan struct{})

			inst, err := tinymod.Module("C").
				Register(tinymod.ComponentWithCleanup[Sink]("SlowSink", func(tinymod.Args) (Sink, tinymod.Cleanup, error) {
					close(started)
					<-proceed

					return new(consoleSink), func() { released = append(released, "SlowSink") }, nil
				})).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			result := make(chan error, 1)
			go func() {
				_, err := tinymod.ResolveShared[Sink](ctx, inst)
				result <- err
			}()

			Eventually(started).Should(BeClosed())
			Expect(inst.Close()).To(Succeed())
			close(proceed)

			Eventually(result).Should(Receive(MatchError(tinymod.ErrInstanceClosed)))
			Expect(released).To(Equal([]tinymod.ComponentID{"SlowSink"}))
		})
	})

	Context("shared instances", func() {
		var sinks *tinymod.Definition

		BeforeEach(func() {
			sinks = tinymod.Module("Sinks").Register(sinkDescriptor(log)).MustDefine()
			def = tinymod.Module("App").Import(sinks).Register(loggerDescriptor(log)).MustDefine()
		})

		It("should share Singletons of an imported instance", func() {
			shared, err := sinks.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			app1, err := def.Builder().WithInstance(shared).Build()
			Expect(err).ShouldNot(HaveOccurred())

			app2, err := def.Builder().WithInstance(shared).Build()
			Expect(err).ShouldNot(HaveOccurred())

			tinymod.MustResolveShared[Logger](ctx, app1).Log("one")
			tinymod.MustResolveShared[Logger](ctx, app2).Log("two")

			Expect(tinymod.MustResolveShared[Logger](ctx, app1)).
				NotTo(BeIdenticalTo(tinymod.MustResolveShared[Logger](ctx, app2)))
			Expect(tinymod.MustResolveShared[Sink](ctx, shared).Lines()).To(Equal([]string{"INFO one", "INFO two"}))
			Expect(log.all()).To(Equal([]tinymod.ComponentID{"ConsoleSink", "LoggerImpl", "LoggerImpl"}))
		})

		It("should build imported Singletons itself without shared instance", func() {
			app1, err := def.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			app2, err := def.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[Sink](ctx, app1)).
				NotTo(BeIdenticalTo(tinymod.MustResolveShared[Sink](ctx, app2)))
		})

		It("should refuse instance of a definition not imported", func() {
			other, err := tinymod.Module("Other").
				Register(letterComponent[A]("A", func() A { return letter("a") })).
				MustDefine().
				Builder().
				Build()
			Expect(err).ShouldNot(HaveOccurred())

			_, err = def.Builder().WithInstance(other).Build()

			Expect(err).Should(BeAssignableToTypeOf(new(tinymod.ForeignInstanceError)))
		})

		It("should refuse to resolve through closed shared instance", func() {
			sinkBuilds := 0
			cleanups := 0
			sinks = tinymod.Module("Sinks").
				Register(tinymod.ComponentWithCleanup[Sink]("ConsoleSink", func(tinymod.Args) (Sink, tinymod.Cleanup, error) {
					sinkBuilds++
					return new(consoleSink), func() { cleanups++ }, nil
				})).
				MustDefine()
			def = tinymod.Module("App").Import(sinks).Register(loggerDescriptor(log)).MustDefine()

			shared, err := sinks.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			app, err := def.Builder().WithInstance(shared).Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(shared.Close()).To(Succeed())

			_, err = tinymod.ResolveShared[Logger](ctx, app)
			Expect(err).Should(MatchError(tinymod.ErrInstanceClosed))

			_, err = tinymod.ResolveShared[Sink](ctx, app)
			Expect(err).Should(MatchError(tinymod.ErrInstanceClosed))

			Expect(app.Close()).To(Succeed())
			Expect(sinkBuilds).To(BeZero(), "closed instance should build nothing")
			Expect(cleanups).To(BeZero())
			Expect(log.all()).To(BeEmpty())
		})

		It("should ignore overrides of components served by shared instance", func() {
			shared, err := sinks.Builder().Build()
			Expect(err).ShouldNot(HaveOccurred())

			core, logs := observer.New(zapcore.WarnLevel)
			_, err = def.Builder().
				WithLogger(zap.New(core)).
				WithInstance(shared).
				WithParameter("ConsoleSink", "anything", 1).
				Build()

			Expect(err).ShouldNot(HaveOccurred())
			Expect(logs.FilterMessage("override ignored: component is served by an imported instance").Len()).To(Equal(1))
		})
	})

	Context("generic modules", func() {
		It("should keep instantiations apart", func() {
			pgDef, err := repositoryModule[*pgConn]()
			Expect(err).ShouldNot(HaveOccurred())

			txDef, err := repositoryModule[*txConn]()
			Expect(err).ShouldNot(HaveOccurred())

			pg, tx := new(pgConn), new(txConn)

			pgInst, err := pgDef.Builder().WithParameter("Repository", "conn", pg).Build()
			Expect(err).ShouldNot(HaveOccurred())

			txInst, err := txDef.Builder().WithParameter("Repository", "conn", tx).Build()
			Expect(err).ShouldNot(HaveOccurred())

			Expect(tinymod.MustResolveShared[Repository](ctx, pgInst).Save("a")).To(Succeed())
			Expect(tinymod.MustResolveShared[Repository](ctx, txInst).Save("b")).To(Succeed())

			Expect(pg.queries).To(Equal([]string{"INSERT a"}))
			Expect(tx.queries).To(Equal([]string{"tx: INSERT b"}))
		})

		It("should require connection of the instantiated type", func() {
			pgDef, err := repositoryModule[*pgConn]()
			Expect(err).ShouldNot(HaveOccurred())

			_, err = pgDef.Builder().Build()
			Expect(err).Should(BeAssignableToTypeOf(new(tinymod.MissingRequiredParameterError)))

			_, err = pgDef.Builder().WithParameter("Repository", "conn", new(txConn)).Build()
			Expect(err).Should(BeAssignableToTypeOf(new(tinymod.ParameterTypeError)))
		})
	})
})
