package strata

// ResourceKind selects the storage shape a resource type is registered
// with: at most one value, or an ordered sequence of values.
type ResourceKind int

const (
	ResourceSingleton ResourceKind = iota
	ResourceCollection
)

// resourceSlot is the type-erased storage cell for one registered
// resource type. Mirrors erasedColumn's role for components: the Registry
// only ever touches a slot through this interface, recovering the
// concrete element type via a checked downcast at call sites that know it
// statically.
type resourceSlot interface {
	kind() ResourceKind
	teardownAll()
}

type singletonSlot[T any] struct {
	value *T
}

func (s *singletonSlot[T]) kind() ResourceKind { return ResourceSingleton }

func (s *singletonSlot[T]) teardownAll() {
	if s.value == nil {
		return
	}
	if td, ok := any(*s.value).(Teardown); ok {
		td.Teardown()
	}
	s.value = nil
}

type collectionSlot[T any] struct {
	values []T
}

func (s *collectionSlot[T]) kind() ResourceKind { return ResourceCollection }

func (s *collectionSlot[T]) teardownAll() {
	for _, v := range s.values {
		if td, ok := any(v).(Teardown); ok {
			td.Teardown()
		}
	}
	s.values = nil
}

// RegisterResource declares T as a resource of the given kind. The kind is
// immutable for the Registry's lifetime once registered.
func RegisterResource[T any](r *Registry, kind ResourceKind) error {
	name := componentTypeName[T]()
	if _, ok := r.resources[name]; ok {
		return ResourceAlreadyRegisteredError{Resource: name}
	}
	switch kind {
	case ResourceCollection:
		r.resources[name] = &collectionSlot[T]{}
	default:
		r.resources[name] = &singletonSlot[T]{}
	}
	return nil
}

// ResourceRegistered reports whether T has been registered as a resource.
func ResourceRegistered[T any](r *Registry) bool {
	_, ok := r.resources[componentTypeName[T]()]
	return ok
}

// PushResource adds value to T's resource storage: replacing the cell (and
// tearing down whatever it held) for a singleton, or appending for a
// collection.
func PushResource[T any](r *Registry, value T) error {
	name := componentTypeName[T]()
	slot, ok := r.resources[name]
	if !ok {
		return UnregisteredResourceError{Resource: name}
	}
	switch s := slot.(type) {
	case *singletonSlot[T]:
		if s.value != nil {
			if td, ok := any(*s.value).(Teardown); ok {
				td.Teardown()
			}
		}
		v := value
		s.value = &v
	case *collectionSlot[T]:
		s.values = append(s.values, value)
	default:
		return InternalInconsistencyError{Reason: "resource slot type mismatch for " + name}
	}
	return nil
}

// ResourceIter is a snapshotting iterator over a collection resource's
// values, taken at QueryResource time, same discipline as QueryIter.
type ResourceIter[T any] struct {
	values []T
}

func (it *ResourceIter[T]) Len() int {
	return len(it.values)
}

func (it *ResourceIter[T]) Next() (T, bool) {
	var zero T
	if len(it.values) == 0 {
		return zero, false
	}
	v := it.values[0]
	it.values = it.values[1:]
	return v, true
}

func (it *ResourceIter[T]) All() func(yield func(T) bool) {
	return func(yield func(T) bool) {
		for len(it.values) > 0 {
			v := it.values[0]
			it.values = it.values[1:]
			if !yield(v) {
				return
			}
		}
	}
}

func (it *ResourceIter[T]) Drain() {
	it.values = nil
}

// ResourceQuery is the variant query(R) returns: a borrowing handle to the
// singleton cell, or a snapshotting iterator over the collection.
type ResourceQuery[T any] struct {
	resourceKind ResourceKind
	cell         *T
	iter         *ResourceIter[T]
}

// Kind reports which shape this resource was registered with.
func (q *ResourceQuery[T]) Kind() ResourceKind {
	return q.resourceKind
}

// Singleton returns the singleton cell's value, or false if empty or this
// resource is a collection.
func (q *ResourceQuery[T]) Singleton() (T, bool) {
	var zero T
	if q.resourceKind != ResourceSingleton || q.cell == nil {
		return zero, false
	}
	return *q.cell, true
}

// Collection returns the collection iterator, or nil if this resource is a
// singleton.
func (q *ResourceQuery[T]) Collection() *ResourceIter[T] {
	if q.resourceKind != ResourceCollection {
		return nil
	}
	return q.iter
}

// QueryResource looks up T's registered storage and returns a borrowing
// handle (singleton) or a snapshot (collection).
func QueryResource[T any](r *Registry) (*ResourceQuery[T], error) {
	name := componentTypeName[T]()
	slot, ok := r.resources[name]
	if !ok {
		return nil, UnregisteredResourceError{Resource: name}
	}
	switch s := slot.(type) {
	case *singletonSlot[T]:
		return &ResourceQuery[T]{resourceKind: ResourceSingleton, cell: s.value}, nil
	case *collectionSlot[T]:
		snapshot := make([]T, len(s.values))
		copy(snapshot, s.values)
		return &ResourceQuery[T]{resourceKind: ResourceCollection, iter: &ResourceIter[T]{values: snapshot}}, nil
	default:
		return nil, InternalInconsistencyError{Reason: "resource slot type mismatch for " + name}
	}
}

// ClearResource releases every value T's resource storage currently holds,
// tearing each down if it carries a Teardown hook.
func ClearResource[T any](r *Registry) error {
	name := componentTypeName[T]()
	slot, ok := r.resources[name]
	if !ok {
		return UnregisteredResourceError{Resource: name}
	}
	slot.teardownAll()
	return nil
}

// RemoveResource drops the singleton cell (idx is ignored), or removes the
// collection's value at idx via ordered (non swap) removal.
func RemoveResource[T any](r *Registry, idx int) error {
	name := componentTypeName[T]()
	slot, ok := r.resources[name]
	if !ok {
		return UnregisteredResourceError{Resource: name}
	}
	switch s := slot.(type) {
	case *singletonSlot[T]:
		if s.value != nil {
			if td, ok := any(*s.value).(Teardown); ok {
				td.Teardown()
			}
			s.value = nil
		}
	case *collectionSlot[T]:
		if idx < 0 || idx >= len(s.values) {
			return InternalInconsistencyError{Reason: "resource collection index out of range"}
		}
		if td, ok := any(s.values[idx]).(Teardown); ok {
			td.Teardown()
		}
		s.values = append(s.values[:idx], s.values[idx+1:]...)
	default:
		return InternalInconsistencyError{Reason: "resource slot type mismatch for " + name}
	}
	return nil
}
