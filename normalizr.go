package normalizr

import (
	"github.com/nhusher/normalizr/internal/ident"
)

// Schema is the contract every schema variant implements. The variant set is
// closed: entities, objects, arrays, value maps, unions, the two structural
// shorthands and the dynamic resolver, all provided by the schema package.
//
// Normalize receives the raw value together with its parent and key, and the
// per-call Visitor carrying traversal state. Denormalize receives the
// normalized value (an id, a tag, or an already-nested object) and the
// per-call Unvisitor.
type Schema interface {
	Normalize(value, parent any, key string, v Visitor) (any, error)
	Denormalize(value any, u Unvisitor) (any, error)
}

// Visitor is the state of one Normalize call, threaded through the recursion.
// Nothing outlives the call; there is no module-level mutable state.
type Visitor interface {
	// Visit recurses into value with the given schema. Primitives and nil pass
	// through unchanged.
	Visit(value, parent any, key string, s Schema) (any, error)
	// AddEntity merges or inserts a processed entity into the store bucket for
	// key, resolving id collisions through merge.
	AddEntity(key string, id any, entity map[string]any, merge MergeFunc)
	// VisitedBefore reports whether ref, the exact input reference, was already
	// visited for (key, id), recording it otherwise. Distinct objects sharing
	// an id are each visited and later merged; only literal re-entrance is
	// short-circuited.
	VisitedBefore(key string, id any, ref any) bool
}

// Unvisitor is the state of one Denormalize call: the entity store view, the
// completion cache, and the in-progress set used for cycle handling.
type Unvisitor interface {
	// Unvisit recurses into value with the given schema. Nil passes through
	// unchanged.
	Unvisit(value any, s Schema) (any, error)
	// ResolveEntity reconstructs the entity referenced by value (an id or an
	// already-nested object) for the given entity schema. The driver owns the
	// lookup, fallback, caching and cycle machinery; field recursion is
	// delegated back through ref.DenormalizeFields.
	ResolveEntity(ref EntityRef, value any) (any, error)
}

// EntityRef is the capability an entity schema exposes to the denormalize
// driver.
type EntityRef interface {
	// Key returns the entity type key, the store bucket name.
	Key() string
	// Fallback synthesizes a substitute for a missing stored entity. A nil
	// result means no substitute.
	Fallback(id any) any
	// DenormalizeFields rebuilds the declared nested fields of record. For
	// map records the record is patched in place and returned; for Record
	// values each Set returns a new instance and the final one is returned.
	DenormalizeFields(record any, u Unvisitor) (any, error)
}

// MergeFunc resolves an id collision between an existing stored entity and an
// incoming one. The default is a shallow union where incoming wins; the result
// depends on traversal order.
type MergeFunc func(existing, incoming map[string]any) map[string]any

// Record is the immutable-container capability. Stored entities implementing
// Record are denormalized by threading the new instances returned by Set
// instead of patching in place; cyclic references through Records are fatal.
// Selection is by interface satisfaction only, never structural probing.
type Record interface {
	Get(key string) (any, bool)
	Set(key string, value any) Record
	Has(key string) bool
}

// StringID coerces an entity id to the string form used as a store key.
// Numeric ids of equal value yield the same key regardless of decode type.
func StringID(v any) string { return ident.StringID(v) }
