package strata

import "reflect"

// System is a user-defined type that processes Registry state once per
// invocation of its owning Stage. Go has no allocator-parameterized
// constructor idiom, so an optional `init(allocator) -> S` step is just:
// the caller constructs S with an ordinary constructor before passing it
// to AddSystem/AddSystems.
type System interface {
	Process(r *Registry) error
}

// SystemTeardown is implemented by systems that hold resources needing
// release when their owning stage is removed.
type SystemTeardown interface {
	Teardown()
}

func systemName(s System) string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func teardownSystem(s System) {
	if td, ok := s.(SystemTeardown); ok {
		td.Teardown()
	}
}
