package strata

// Archetype is the Archetype Table: a dense, columnar store for every
// entity that currently carries exactly one fixed set of component types.
// Its hash is the XOR-fold of each member component type's name hash, so
// two archetypes describing the same component set always collide on the
// same hash regardless of the order components were added in — unlike the
// teacher's per-pointer FNV hash, which is stable only for the lifetime of
// a single registration order.
type Archetype struct {
	hash      uint64
	entityIDs []EntityID
	columns   map[string]erasedColumn
}

func newArchetype(hash uint64) *Archetype {
	return &Archetype{
		hash:    hash,
		columns: make(map[string]erasedColumn),
	}
}

// Len returns the number of entities currently stored in the archetype.
func (a *Archetype) Len() int {
	return len(a.entityIDs)
}

// HasComponent reports whether the archetype carries a column for the
// given canonical component-type name.
func (a *Archetype) HasComponent(name string) bool {
	_, ok := a.columns[name]
	return ok
}

// Column returns the erased column for name, or nil if the archetype does
// not carry that component.
func (a *Archetype) Column(name string) erasedColumn {
	return a.columns[name]
}

// ComponentNames returns the canonical names of every component type the
// archetype carries. Order is unspecified.
func (a *Archetype) ComponentNames() []string {
	names := make([]string, 0, len(a.columns))
	for name := range a.columns {
		names = append(names, name)
	}
	return names
}

// EntityAt returns the entity occupying row.
func (a *Archetype) EntityAt(row int) EntityID {
	return a.entityIDs[row]
}

// push appends a new row for entity e and returns its row index. Callers
// are responsible for writing every column's value at that row (via
// columnSet) before the row is considered live; a column with no value
// written for a freshly pushed row holds its element type's zero value.
func (a *Archetype) push(e EntityID) int {
	row := len(a.entityIDs)
	a.entityIDs = append(a.entityIDs, e)
	return row
}

// swapRemove removes row, firing every column's Teardown hooks for that
// row, and reports which entity (if any) was moved into row as a result of
// the swap so the caller can patch that entity's pointer. It returns false
// as its second result when row was already the last row (no entity moved).
func (a *Archetype) swapRemove(row int) (moved EntityID, ok bool) {
	last := len(a.entityIDs) - 1
	for _, col := range a.columns {
		col.SwapRemove(row)
	}
	if row != last {
		moved = a.entityIDs[last]
		ok = true
		a.entityIDs[row] = moved
	}
	a.entityIDs = a.entityIDs[:last]
	return moved, ok
}
