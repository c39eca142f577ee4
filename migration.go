package strata

// AddComponent attaches value to entity e, migrating e into whatever
// archetype represents its current component set plus T. This is the
// engine's central algorithm: compute the target archetype hash, get or
// create that archetype, copy every shared column's row across, write the
// new column's value, then remove the row from the source archetype.
//
// The checks on the caller's input (unknown entity, duplicate component)
// happen before any mutation, so those errors leave the Registry
// unchanged. The later InternalInconsistencyError returns detect a
// corrupted Registry part-way through the migration and are returned
// without rolling back what was already done.
func AddComponent[T any](r *Registry, e EntityID, value T) error {
	ptr, ok := r.entities.Get(e)
	if !ok {
		return NoSuchEntityError{Entity: e}
	}
	src, ok := r.archetypes.Get(ptr.archetypeHash)
	if !ok {
		return InternalInconsistencyError{Reason: "entity pointer names a missing archetype"}
	}

	name := componentTypeName[T]()
	if src.HasComponent(name) {
		return DuplicateComponentError{Entity: e, Component: name}
	}
	hash := componentHash(name)
	targetHash := src.hash ^ hash

	dst := r.getOrCreateArchetype(targetHash, src, name, func() erasedColumn { return newColumn[T]() })

	// Re-obtain the source pointer by hash: get_or_create may have grown
	// the archetype map. A map of pointer values keeps the pointed-to
	// Archetype stable across growth, but re-fetching here preserves the
	// invariant explicitly rather than leaning on that implementation
	// detail.
	src, ok = r.archetypes.Get(ptr.archetypeHash)
	if !ok {
		return InternalInconsistencyError{Reason: "source archetype vanished mid-migration"}
	}

	srcRow := ptr.row
	dstRow := dst.push(e)

	for colName, col := range src.columns {
		col.CopyTo(srcRow, dst.columns[colName], dstRow)
	}
	columnSet[T](dst.columns[name], dstRow, value)

	ptr.archetypeHash = targetHash
	ptr.row = dstRow

	moved, swapped := src.swapRemove(srcRow)
	if swapped {
		movedPtr, ok := r.entities.Get(moved)
		if !ok {
			return InternalInconsistencyError{Reason: "swapped entity has no entity pointer"}
		}
		movedPtr.row = srcRow
	}

	if r.cfg.DestroyEmptyArchetypes && src.hash != voidArchetypeHash && src.Len() == 0 {
		r.destroyArchetype(src)
	}
	return nil
}
