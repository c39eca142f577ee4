package strata

// EntityID uniquely identifies an entity within a Registry. IDs are assigned
// monotonically at creation and are never recycled: once an entity is
// destroyed its ID is retired for the lifetime of the Registry.
type EntityID uint32

// entityPointer locates an entity's row within its owning archetype.
type entityPointer struct {
	archetypeHash uint64
	row           int
}

// voidArchetypeHash is the hash of the always-present, component-less
// archetype every entity starts in.
const voidArchetypeHash uint64 = 0
