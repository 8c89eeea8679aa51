package tinymod

import "time"

// BuildEvent describes one finished attempt to build a component.
type BuildEvent struct {
	Err       error
	Module    string
	Component ComponentID
	Interface InterfaceID
	Lifetime  Lifetime
	Duration  time.Duration
}

// Observer is notified after every build attempt of an Instance.
// It is called synchronously from the resolving goroutine.
type Observer interface {
	ObserveBuild(BuildEvent)
}

type ObserverFunc func(BuildEvent)

func (fn ObserverFunc) ObserveBuild(e BuildEvent) {
	fn(e)
}

type nopObserver struct{}

func (nopObserver) ObserveBuild(BuildEvent) {}
