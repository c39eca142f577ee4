package strata

import "fmt"

// NoSuchEntityError is returned when an operation is given an EntityID that
// is not currently tracked by the Registry (never created, or destroyed).
// GetComponent also returns it when the entity exists but carries no
// component of the requested type.
type NoSuchEntityError struct {
	Entity EntityID
}

func (e NoSuchEntityError) Error() string {
	return fmt.Sprintf("strata: no such entity: %d", e.Entity)
}

// InternalInconsistencyError indicates an invariant violation was detected
// at runtime (a corrupted entity pointer, a missing archetype that an
// entity pointer names, a swap-removed row whose swapped-in entity has no
// pointer of its own). The Registry should be considered corrupted once
// this is observed.
type InternalInconsistencyError struct {
	Reason string
}

func (e InternalInconsistencyError) Error() string {
	return fmt.Sprintf("strata: internal inconsistency: %s", e.Reason)
}

// InvalidQueryError is returned when a query's type parameter does not
// describe a tuple of distinct component types (a non-struct type, a
// struct with no fields, a struct with a repeated field type, or a field
// that is not a pointer to a component type).
type InvalidQueryError struct {
	Reason string
}

func (e InvalidQueryError) Error() string {
	return fmt.Sprintf("strata: invalid query: %s", e.Reason)
}

// DuplicateComponentError is returned by AddComponent when the entity
// already carries a component of the type being added. Detected before
// any mutation by checking whether the entity's current archetype already
// has a column for that type; XOR-ing the same name hash in twice would
// otherwise cancel out and corrupt the archetype hash.
type DuplicateComponentError struct {
	Entity    EntityID
	Component string
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("strata: entity %d already has component %s", e.Entity, e.Component)
}

// UnregisteredResourceError is returned by a resource operation issued
// before the resource type was registered with RegisterResource.
type UnregisteredResourceError struct {
	Resource string
}

func (e UnregisteredResourceError) Error() string {
	return fmt.Sprintf("strata: resource not registered: %s", e.Resource)
}

// ResourceAlreadyRegisteredError is returned by RegisterResource when the
// resource type has already been registered on this Registry.
type ResourceAlreadyRegisteredError struct {
	Resource string
}

func (e ResourceAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("strata: resource already registered: %s", e.Resource)
}

// DuplicateStageError is returned by Pipeline structural operations that
// would introduce two stages with the same name at one nesting level.
type DuplicateStageError struct {
	Stage string
}

func (e DuplicateStageError) Error() string {
	return fmt.Sprintf("strata: duplicate stage: %s", e.Stage)
}

// StageNotFoundError is returned when a Pipeline operation names a stage
// that does not exist at the level it is being looked up.
type StageNotFoundError struct {
	Stage string
}

func (e StageNotFoundError) Error() string {
	return fmt.Sprintf("strata: stage not found: %s", e.Stage)
}

// IdSpaceExhaustedError is returned by CreateEntity/Spawn when the 32-bit
// entity ID space has been fully allocated.
type IdSpaceExhaustedError struct{}

func (e IdSpaceExhaustedError) Error() string {
	return "strata: entity id space exhausted"
}

// OutOfMemoryError is reserved for allocation-failure conditions. Go's
// runtime does not give a recoverable path back from a true allocation
// failure (make/append/new panic and crash the process rather than
// returning an error the caller could check), so no engine operation in
// this tree constructs one; it exists for completeness with the rest of
// the typed-error surface, and so a caller wrapping a custom
// allocator-backed component type has somewhere to report an allocation
// failure of its own.
type OutOfMemoryError struct {
	Reason string
}

func (e OutOfMemoryError) Error() string {
	return "strata: out of memory: " + e.Reason
}

// SystemError wraps an error produced by a user System's Process method.
// The Pipeline logs it and either halts the owning stage or continues to
// the next system, depending on the stage's ContinueOnError policy.
type SystemError struct {
	Stage  string
	System string
	Err    error
}

func (e SystemError) Error() string {
	return fmt.Sprintf("strata: system %q in stage %q: %v", e.System, e.Stage, e.Err)
}

func (e SystemError) Unwrap() error { return e.Err }
