package strata

import (
	"github.com/kamstrup/intmap"
)

// Registry is the owning container for a population of entities: it maps
// entities to their location, owns every archetype, every registered
// resource, the pipeline, the pending buffered-update queue, and the
// installed plugins.
type Registry struct {
	cfg Config

	nextID   EntityID
	entities *intmap.Map[EntityID, *entityPointer]

	archetypes    *intmap.Map[uint64, *Archetype]
	archetypeList []*Archetype

	resources map[string]resourceSlot
	buffer    *updateBuffer

	plugins  []Plugin
	pipeline *Pipeline
}

// NewRegistry constructs a Registry ready for use. An omitted Config
// argument uses DefaultConfig.
func NewRegistry(cfg ...Config) *Registry {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	c = c.withDefaults()

	r := &Registry{
		cfg:        c,
		entities:   intmap.New[EntityID, *entityPointer](256),
		archetypes: intmap.New[uint64, *Archetype](64),
		resources:  make(map[string]resourceSlot),
		buffer:     newUpdateBuffer(),
		pipeline:   newPipeline(),
	}

	void := newArchetype(voidArchetypeHash)
	r.archetypes.Put(voidArchetypeHash, void)
	r.archetypeList = append(r.archetypeList, void)

	return r
}

// Teardown runs plugin Teardown callbacks in reverse order of addition,
// then tears down the pipeline's systems, then tears down every resource
// value, then discards pending buffered updates. Archetypes and the
// component values they hold are left in place: no component Teardown
// hook fires.
func (r *Registry) Teardown() {
	for i := len(r.plugins) - 1; i >= 0; i-- {
		if r.plugins[i].Teardown != nil {
			r.plugins[i].Teardown(r)
		}
	}
	r.pipeline.teardown()
	for _, slot := range r.resources {
		slot.teardownAll()
	}
	r.buffer.discard()
}

func (r *Registry) getArchetype(hash uint64) (*Archetype, bool) {
	return r.archetypes.Get(hash)
}

func (r *Registry) getOrCreateArchetype(hash uint64, like *Archetype, newName string, newColumnFactory func() erasedColumn) *Archetype {
	if existing, ok := r.archetypes.Get(hash); ok {
		return existing
	}
	created := newArchetype(hash)
	for name, col := range like.columns {
		created.columns[name] = col.CloneEmpty()
	}
	created.columns[newName] = newColumnFactory()
	r.archetypes.Put(hash, created)
	r.archetypeList = append(r.archetypeList, created)
	return created
}

func (r *Registry) destroyArchetype(a *Archetype) {
	r.archetypes.Del(a.hash)
	for i, candidate := range r.archetypeList {
		if candidate == a {
			r.archetypeList = append(r.archetypeList[:i], r.archetypeList[i+1:]...)
			break
		}
	}
}

// CreateEntity allocates a new entity in the void archetype.
func (r *Registry) CreateEntity() (EntityID, error) {
	if r.nextID == ^EntityID(0) {
		return 0, IdSpaceExhaustedError{}
	}
	id := r.nextID

	void, ok := r.archetypes.Get(voidArchetypeHash)
	if !ok {
		return 0, InternalInconsistencyError{Reason: "void archetype missing"}
	}
	row := void.push(id)

	r.nextID++
	r.entities.Put(id, &entityPointer{archetypeHash: voidArchetypeHash, row: row})
	return id, nil
}

// DestroyEntity removes e from its archetype and discards its ID.
func (r *Registry) DestroyEntity(e EntityID) error {
	ptr, ok := r.entities.Get(e)
	if !ok {
		return NoSuchEntityError{Entity: e}
	}
	arch, ok := r.archetypes.Get(ptr.archetypeHash)
	if !ok {
		return InternalInconsistencyError{Reason: "entity pointer names a missing archetype"}
	}

	moved, swapped := arch.swapRemove(ptr.row)
	if swapped {
		movedPtr, ok := r.entities.Get(moved)
		if !ok {
			return InternalInconsistencyError{Reason: "swapped entity has no entity pointer"}
		}
		movedPtr.row = ptr.row
	}

	r.entities.Del(e)

	if r.cfg.DestroyEmptyArchetypes && arch.hash != voidArchetypeHash && arch.Len() == 0 {
		r.destroyArchetype(arch)
	}
	return nil
}

// Spawn creates a new entity and adds every component in the bundle, in
// order. If adding any member fails, the entity (and whatever components
// it had already picked up) is destroyed before the error propagates.
func Spawn(r *Registry, components ...Component) (EntityID, error) {
	e, err := r.CreateEntity()
	if err != nil {
		return 0, err
	}
	for _, c := range components {
		if err := c.addTo(r, e); err != nil {
			_ = r.DestroyEntity(e)
			return 0, err
		}
	}
	return e, nil
}

// HasComponent reports whether e currently carries a column for component
// type T. Returns false (not an error) when e does not exist, matching
// has_component's "entity's current archetype contains a column" phrasing:
// a nonexistent entity trivially has no columns.
func HasComponent[T any](r *Registry, e EntityID) bool {
	ptr, ok := r.entities.Get(e)
	if !ok {
		return false
	}
	arch, ok := r.archetypes.Get(ptr.archetypeHash)
	if !ok {
		return false
	}
	return arch.HasComponent(componentTypeName[T]())
}

// GetComponent returns a pointer to e's live T value, or NoSuchEntityError
// if e does not exist or carries no T. The pointer is only
// valid until the next structural mutation of the Registry (add_component,
// create_entity, destroy_entity, spawn) — the same invalidation rule that
// governs query iterator pointers.
func GetComponent[T any](r *Registry, e EntityID) (*T, error) {
	ptr, ok := r.entities.Get(e)
	if !ok {
		return nil, NoSuchEntityError{Entity: e}
	}
	arch, ok := r.archetypes.Get(ptr.archetypeHash)
	if !ok {
		return nil, InternalInconsistencyError{Reason: "entity pointer names a missing archetype"}
	}
	col := arch.Column(componentTypeName[T]())
	if col == nil {
		return nil, NoSuchEntityError{Entity: e}
	}
	return (*T)(col.PointerTo(ptr.row)), nil
}

// AddPlugin appends p to the plugin list and invokes its Init callback.
func (r *Registry) AddPlugin(p Plugin) {
	r.plugins = append(r.plugins, p)
	if p.Init != nil {
		p.Init(r)
	}
}

// SetPipeline replaces the Registry's pipeline.
func (r *Registry) SetPipeline(p *Pipeline) {
	r.pipeline = p
}

// Pipeline returns the Registry's current pipeline.
func (r *Registry) Pipeline() *Pipeline {
	return r.pipeline
}

// Config returns the Registry's configuration, as supplied to NewRegistry
// (with defaults filled in).
func (r *Registry) Config() Config {
	return r.cfg
}

// Logger returns the Registry's configured diagnostic sink.
func (r *Registry) Logger() Logger {
	return r.cfg.Logger
}
