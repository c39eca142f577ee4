package strata_test

import strata "github.com/strata-ecs/strata"

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Name string

type Health int

type A struct{}
type B struct{}
type C struct{}

// teardownTracker increments *Count when torn down, so tests can assert a
// component or resource was released exactly once.
type teardownTracker struct {
	Count *int
}

func (t teardownTracker) Teardown() {
	*t.Count++
}

func newRegistry() *strata.Registry {
	return strata.NewRegistry()
}

func newRegistryWithEmptyArchetypeCleanup() *strata.Registry {
	return strata.NewRegistry(strata.Config{DestroyEmptyArchetypes: true})
}

// systemFunc adapts a plain function to the System interface for tests
// that don't need a dedicated system type.
type systemFunc func(r *strata.Registry) error

func (f systemFunc) Process(r *strata.Registry) error {
	return f(r)
}

// teardownTestSystem is a System whose Teardown hook is observable.
type teardownTestSystem struct {
	onTeardown func()
}

func (s *teardownTestSystem) Process(r *strata.Registry) error {
	return nil
}

func (s *teardownTestSystem) Teardown() {
	if s.onTeardown != nil {
		s.onTeardown()
	}
}

var errBoom = assertErrorType{}

type assertErrorType struct{}

func (assertErrorType) Error() string { return "boom" }
