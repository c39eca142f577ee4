package strata

import (
	"hash/fnv"
	"reflect"
	"sync"
	"unsafe"
)

// Teardown is implemented by component or resource types that need to
// release state (close a handle, return a buffer to a pool, ...) when their
// value is dropped by the engine: on swap_remove during migration or entity
// destruction, and on resource clear/remove. The engine never requires it;
// types that don't need cleanup simply don't implement it.
type Teardown interface {
	Teardown()
}

var (
	typeNameMu    sync.RWMutex
	typeNameCache = map[reflect.Type]string{}
)

// componentTypeName returns the canonical, stable name the engine uses to
// key a component type's column within an archetype and to fold into the
// archetype hash. Computed once per type and cached; cheap enough to call
// outside the per-row hot path (archetype creation, not iteration).
func componentTypeName[T any]() string {
	t := reflect.TypeFor[T]()

	typeNameMu.RLock()
	if name, ok := typeNameCache[t]; ok {
		typeNameMu.RUnlock()
		return name
	}
	typeNameMu.RUnlock()

	name := t.String()
	if pkgPath := t.PkgPath(); pkgPath != "" && t.Name() != "" {
		name = pkgPath + "." + t.Name()
	}

	typeNameMu.Lock()
	typeNameCache[t] = name
	typeNameMu.Unlock()
	return name
}

// componentHash hashes a canonical component-type name into its
// contribution to an archetype hash (spec: XOR-fold of per-name hashes).
func componentHash(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// erasedColumn is the fixed virtual interface every Type-Erased Column
// Handle exposes. The Registry and Archetype only ever touch component
// storage through this interface; the concrete element type is recovered
// via a checked downcast (columnGet/columnSet) only at call sites that know
// it statically. A mismatched downcast panics rather than corrupting memory
// — Go's runtime type assertion stands in for the "unchecked reinterpret"
// the original engine performs, per the same invariant.
type erasedColumn interface {
	Len() int
	Name() string
	Hash() uint64
	SwapRemove(row int)
	CopyTo(srcRow int, dst erasedColumn, dstRow int)
	CloneEmpty() erasedColumn
	PointerTo(row int) unsafe.Pointer
	BuildCell(row int, r *Registry, entity EntityID) any
}

// column is the Component Column: densely packed, ordered storage for one
// component type, indexed by row within its owning archetype.
type column[T any] struct {
	name   string
	hash   uint64
	values []T
}

func newColumn[T any]() *column[T] {
	name := componentTypeName[T]()
	return &column[T]{name: name, hash: componentHash(name)}
}

func (c *column[T]) Len() int      { return len(c.values) }
func (c *column[T]) Name() string  { return c.name }
func (c *column[T]) Hash() uint64  { return c.hash }

// set extends the column with zero values up to and including row, then
// replaces the slot at row. Rows between the old length and row are left
// at T's zero value; the engine only ever reads rows it has written via
// migration or an explicit set.
func (c *column[T]) set(row int, value T) {
	if row >= len(c.values) {
		grown := make([]T, row+1)
		copy(grown, c.values)
		c.values = grown
	}
	c.values[row] = value
}

func (c *column[T]) get(row int) T {
	return c.values[row]
}

// SwapRemove removes row, firing the element's Teardown hook first if it
// has one, then moving the formerly-last row into its place. Length
// decreases by one.
func (c *column[T]) SwapRemove(row int) {
	last := len(c.values) - 1
	if td, ok := any(c.values[row]).(Teardown); ok {
		td.Teardown()
	}
	if row != last {
		c.values[row] = c.values[last]
	}
	var zero T
	c.values[last] = zero
	c.values = c.values[:last]
}

// CopyTo reads srcRow and writes it into dst at dstRow. dst must wrap the
// same element type T; used only during archetype migration where the
// caller has paired up columns by shared component-type name.
func (c *column[T]) CopyTo(srcRow int, dst erasedColumn, dstRow int) {
	typed := dst.(*column[T])
	typed.set(dstRow, c.values[srcRow])
}

// CloneEmpty allocates a fresh, empty column for the same element type.
func (c *column[T]) CloneEmpty() erasedColumn {
	return &column[T]{name: c.name, hash: c.hash}
}

// PointerTo returns a raw pointer to the live value at row, used by Query
// to fill a view's component pointers and by GetComponent.
func (c *column[T]) PointerTo(row int) unsafe.Pointer {
	return unsafe.Pointer(&c.values[row])
}

// BuildCell returns a BufferedCell[T] boxed as any, the per-field accessor
// a buffered query's view installs into its result struct at row.
func (c *column[T]) BuildCell(row int, r *Registry, entity EntityID) any {
	return BufferedCell[T]{entity: entity, live: &c.values[row], r: r, name: c.name}
}

func columnGet[T any](c erasedColumn, row int) T {
	return c.(*column[T]).get(row)
}

func columnSet[T any](c erasedColumn, row int, value T) {
	c.(*column[T]).set(row, value)
}

// Component is an opaque, type-erased component value ready to be added to
// an entity. Construct one with Comp; bundles of Components are passed to
// Spawn. Keeping the wrapper generic (rather than accepting `any` and
// recovering the type with reflection) means Spawn never needs a runtime
// type registry for components — the static type parameter captured by
// Comp is enough to build or locate the right column.
type Component interface {
	componentName() string
	addTo(r *Registry, e EntityID) error
}

type typedComponent[T any] struct {
	value T
}

func (c typedComponent[T]) componentName() string { return componentTypeName[T]() }

func (c typedComponent[T]) addTo(r *Registry, e EntityID) error {
	return AddComponent(r, e, c.value)
}

// Comp wraps a component value for use in a Spawn bundle.
func Comp[T any](value T) Component {
	return typedComponent[T]{value: value}
}
