package strata

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"
)

// updateRecord is one queued deferred write: the target entity and
// component name (for diagnostics), an owned byte buffer holding the new
// value, and an applicator closure that memcpys those bytes into the live
// cell. Modeled as an owned []byte plus closure rather than `any`, per the
// buffered-update-applicator design note — grounded on the
// unsafe.Slice((*byte)(unsafe.Pointer(&v)), size) byte-copy idiom lazyecs
// uses for its own SetComponent.
type updateRecord struct {
	entity   EntityID
	typeName string
	bytes    []byte
	apply    func(bytes []byte)
}

// updateBuffer is the Registry's FIFO queue of pending buffered updates.
type updateBuffer struct {
	records []updateRecord
}

func newUpdateBuffer() *updateBuffer {
	return &updateBuffer{}
}

func (b *updateBuffer) enqueue(rec updateRecord) {
	b.records = append(b.records, rec)
}

func (b *updateBuffer) len() int {
	return len(b.records)
}

func (b *updateBuffer) apply() {
	for _, rec := range b.records {
		rec.apply(rec.bytes)
	}
	b.records = b.records[:0]
}

func (b *updateBuffer) discard() {
	b.records = b.records[:0]
}

func memcpyApplicator[T any](target unsafe.Pointer) func(bytes []byte) {
	return func(bytes []byte) {
		dst := unsafe.Slice((*byte)(target), unsafe.Sizeof(*new(T)))
		copy(dst, bytes)
	}
}

func encodeValue[T any](value T) []byte {
	size := unsafe.Sizeof(value)
	src := unsafe.Slice((*byte)(unsafe.Pointer(&value)), size)
	buf := make([]byte, size)
	copy(buf, src)
	return buf
}

// BufferedCell is one field of a buffered query's view: a read accessor
// (live value, safe to read immediately) and a write accessor (queues a
// deferred write instead of mutating the live cell), scoped to a single
// component type C. A
// BufferedQueryIter's result struct carries one BufferedCell[C] per
// matched component type, the same way an EntityView carries one *C per
// matched type for a plain Query.
type BufferedCell[T any] struct {
	entity EntityID
	live   *T
	r      *Registry
	name   string
}

// Get reads the live value.
func (c BufferedCell[T]) Get() T {
	return *c.live
}

// Set queues a deferred write of value into the live cell. The live cell
// is not touched until ApplyBufferedUpdates runs; if several writes target
// the same cell, the last one enqueued wins once applied.
func (c BufferedCell[T]) Set(value T) {
	c.r.buffer.enqueue(updateRecord{
		entity:   c.entity,
		typeName: c.name,
		bytes:    encodeValue(value),
		apply:    memcpyApplicator[T](unsafe.Pointer(c.live)),
	})
}

// bufferedQueryPlan mirrors queryPlan (query.go) but validates a
// struct-of-BufferedCell shape instead of a struct-of-pointer shape: each
// field must be a BufferedCell[C] for some component type C, since a
// buffered view must defer each field's write independently rather than
// exposing a live pointer directly.
type bufferedQueryPlan struct {
	names []string
}

var (
	bufferedQueryPlanMu    sync.RWMutex
	bufferedQueryPlanCache = map[reflect.Type]*bufferedQueryPlan{}
)

func buildBufferedQueryPlan[T any]() (*bufferedQueryPlan, error) {
	structType := reflect.TypeFor[T]()

	bufferedQueryPlanMu.RLock()
	if plan, ok := bufferedQueryPlanCache[structType]; ok {
		bufferedQueryPlanMu.RUnlock()
		return plan, nil
	}
	bufferedQueryPlanMu.RUnlock()

	if structType.Kind() != reflect.Struct {
		return nil, InvalidQueryError{Reason: "buffered query type must be a struct of BufferedCell fields"}
	}
	if structType.NumField() == 0 {
		return nil, InvalidQueryError{Reason: "buffered query type must name at least one component"}
	}

	names := make([]string, structType.NumField())
	seen := make(map[string]bool, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Struct || !strings.HasPrefix(field.Type.Name(), "BufferedCell[") {
			return nil, InvalidQueryError{Reason: "field " + field.Name + " is not a BufferedCell of a component type"}
		}
		liveField, ok := field.Type.FieldByName("live")
		if !ok || liveField.Type.Kind() != reflect.Ptr {
			return nil, InvalidQueryError{Reason: "field " + field.Name + " is not a valid BufferedCell"}
		}
		elem := liveField.Type.Elem()
		name := elem.String()
		if pkgPath := elem.PkgPath(); pkgPath != "" && elem.Name() != "" {
			name = pkgPath + "." + elem.Name()
		}
		if seen[name] {
			return nil, InvalidQueryError{Reason: "component type " + name + " requested more than once"}
		}
		seen[name] = true

		names[i] = name
	}

	plan := &bufferedQueryPlan{names: names}
	bufferedQueryPlanMu.Lock()
	bufferedQueryPlanCache[structType] = plan
	bufferedQueryPlanMu.Unlock()
	return plan, nil
}

func (p *bufferedQueryPlan) matches(a *Archetype) bool {
	for _, name := range p.names {
		if !a.HasComponent(name) {
			return false
		}
	}
	return true
}

func (p *bufferedQueryPlan) resolveColumns(a *Archetype) []erasedColumn {
	cols := make([]erasedColumn, len(p.names))
	for i, name := range p.names {
		cols[i] = a.Column(name)
	}
	return cols
}

func (p *bufferedQueryPlan) populate(cols []erasedColumn, row int, r *Registry, entity EntityID, data reflect.Value) {
	for i, col := range cols {
		data.Field(i).Set(reflect.ValueOf(col.BuildCell(row, r, entity)))
	}
}

// BufferedView pairs an entity with its matched BufferedCell fields for one
// buffered query result row, the buffered counterpart of EntityView.
type BufferedView[T any] struct {
	Entity EntityID
	Data   T
}

// BufferedQueryIter is the buffered counterpart of QueryIter: the same
// superset-matching and snapshotting discipline as a plain query, but
// each row's fields are BufferedCell accessors instead of raw pointers.
type BufferedQueryIter[T any] struct {
	views []BufferedView[T]
}

// QueryBuffered matches archetypes the same way Query does: every archetype
// whose column set is a superset of T's component fields. T's fields must
// each be a BufferedCell[C] for some component type C — a query
// struct{ Pos BufferedCell[Position] } matches the same archetypes
// struct{ Pos *Position } would for Query.
func QueryBuffered[T any](r *Registry) (*BufferedQueryIter[T], error) {
	plan, err := buildBufferedQueryPlan[T]()
	if err != nil {
		return nil, err
	}

	structType := reflect.TypeFor[T]()
	views := make([]BufferedView[T], 0)
	for _, arch := range r.archetypeList {
		if !plan.matches(arch) {
			continue
		}
		cols := plan.resolveColumns(arch)
		for row := 0; row < arch.Len(); row++ {
			entity := arch.EntityAt(row)
			data := reflect.New(structType).Elem()
			plan.populate(cols, row, r, entity, data)
			views = append(views, BufferedView[T]{Entity: entity, Data: data.Interface().(T)})
		}
	}
	return &BufferedQueryIter[T]{views: views}, nil
}

func (q *BufferedQueryIter[T]) Len() int {
	return len(q.views)
}

func (q *BufferedQueryIter[T]) Next() (BufferedView[T], bool) {
	if len(q.views) == 0 {
		return BufferedView[T]{}, false
	}
	v := q.views[0]
	q.views = q.views[1:]
	return v, true
}

// All returns an iter.Seq2 over the remaining snapshot, draining it as it
// is consumed, same discipline as QueryIter.All.
func (q *BufferedQueryIter[T]) All() func(yield func(EntityID, T) bool) {
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

func (q *BufferedQueryIter[T]) Drain() {
	q.views = nil
}

// ApplyBufferedUpdates drains the Registry's pending update queue in FIFO
// order, memcpying each record's owned bytes into its live cell. If
// several updates target the same cell, the last one enqueued wins simply
// because it is applied last.
func (r *Registry) ApplyBufferedUpdates() {
	r.buffer.apply()
}

// DiscardBufferedUpdates clears the pending queue without applying it.
func (r *Registry) DiscardBufferedUpdates() {
	r.buffer.discard()
}

// HasPendingUpdates reports whether any buffered update is queued.
func (r *Registry) HasPendingUpdates() bool {
	return r.buffer.len() > 0
}
