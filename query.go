package strata

import (
	"reflect"
	"sync"
	"unsafe"
)

// EntityView pairs an entity with its matched component pointers for one
// query result row. Data is a struct whose fields are pointers into the
// live archetype storage at the moment the owning QueryIter was
// constructed.
type EntityView[T any] struct {
	Entity EntityID
	Data   T
}

// queryPlan describes, for a view struct type T, which component columns
// to look up and where their pointers land in T. Built once per type via
// reflection and cached, validated against a "distinct required types, no
// optional fields" shape.
type queryPlan struct {
	names       []string
	fieldOffset []uintptr
}

var (
	queryPlanMu    sync.RWMutex
	queryPlanCache = map[reflect.Type]*queryPlan{}
)

func buildQueryPlan[T any]() (*queryPlan, error) {
	structType := reflect.TypeFor[T]()

	queryPlanMu.RLock()
	if plan, ok := queryPlanCache[structType]; ok {
		queryPlanMu.RUnlock()
		return plan, nil
	}
	queryPlanMu.RUnlock()

	if structType.Kind() != reflect.Struct {
		return nil, InvalidQueryError{Reason: "query type must be a struct of component pointer fields"}
	}
	if structType.NumField() == 0 {
		return nil, InvalidQueryError{Reason: "query type must name at least one component"}
	}

	names := make([]string, structType.NumField())
	fieldOffset := make([]uintptr, structType.NumField())
	seen := make(map[string]bool, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			return nil, InvalidQueryError{Reason: "field " + field.Name + " is not a pointer to a component type"}
		}
		elem := field.Type.Elem()
		name := elem.String()
		if pkgPath := elem.PkgPath(); pkgPath != "" && elem.Name() != "" {
			name = pkgPath + "." + elem.Name()
		}
		if seen[name] {
			return nil, InvalidQueryError{Reason: "component type " + name + " requested more than once"}
		}
		seen[name] = true

		names[i] = name
		fieldOffset[i] = field.Offset
	}

	plan := &queryPlan{names: names, fieldOffset: fieldOffset}
	queryPlanMu.Lock()
	queryPlanCache[structType] = plan
	queryPlanMu.Unlock()
	return plan, nil
}

func (p *queryPlan) matches(a *Archetype) bool {
	for _, name := range p.names {
		if !a.HasComponent(name) {
			return false
		}
	}
	return true
}

func (p *queryPlan) resolveColumns(a *Archetype) []erasedColumn {
	cols := make([]erasedColumn, len(p.names))
	for i, name := range p.names {
		cols[i] = a.Column(name)
	}
	return cols
}

func (p *queryPlan) populate(cols []erasedColumn, row int, dataPtr unsafe.Pointer) {
	for i, col := range cols {
		fieldPtr := unsafe.Pointer(uintptr(dataPtr) + p.fieldOffset[i])
		*(*unsafe.Pointer)(fieldPtr) = col.PointerTo(row)
	}
}

// QueryIter is a snapshotting iterator: the full set of matching
// (entity, view) pairs is materialized at construction time. Its pointers
// remain valid only until the next structural mutation of the Registry —
// add_component, create_entity, destroy_entity, or spawn. Drain or Close
// it once consumed to release the snapshot array.
type QueryIter[T any] struct {
	views []EntityView[T]
}

// Query matches every archetype whose column set is a superset of T's
// component fields and snapshots one EntityView per matched row. Archetype
// order is unspecified; rows within an archetype are visited in ascending
// row-index order.
func Query[T any](r *Registry) (*QueryIter[T], error) {
	plan, err := buildQueryPlan[T]()
	if err != nil {
		return nil, err
	}

	views := make([]EntityView[T], 0)
	for _, arch := range r.archetypeList {
		if !plan.matches(arch) {
			continue
		}
		cols := plan.resolveColumns(arch)
		for row := 0; row < arch.Len(); row++ {
			var data T
			plan.populate(cols, row, unsafe.Pointer(&data))
			views = append(views, EntityView[T]{Entity: arch.EntityAt(row), Data: data})
		}
	}
	return &QueryIter[T]{views: views}, nil
}

// Len reports how many rows the snapshot matched.
func (q *QueryIter[T]) Len() int {
	return len(q.views)
}

// Next pops the next view off the iterator.
func (q *QueryIter[T]) Next() (EntityView[T], bool) {
	if len(q.views) == 0 {
		return EntityView[T]{}, false
	}
	v := q.views[0]
	q.views = q.views[1:]
	return v, true
}

// All returns an iter.Seq2 over the remaining snapshot, draining it as it
// is consumed.
func (q *QueryIter[T]) All() func(yield func(EntityID, T) bool) {
	return func(yield func(EntityID, T) bool) {
		for len(q.views) > 0 {
			v := q.views[0]
			q.views = q.views[1:]
			if !yield(v.Entity, v.Data) {
				return
			}
		}
	}
}

// Drain releases the snapshot array without visiting the remaining rows.
func (q *QueryIter[T]) Drain() {
	q.views = nil
}
