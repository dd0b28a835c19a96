package normalizr

import (
	"github.com/nhusher/normalizr/internal/ident"
)

// EntityGetter looks up a stored record by entity type key and string id.
type EntityGetter func(key, id string) any

// UnvisitorFactory builds the Unvisitor driving one Denormalize call. The
// default factory builds the eager driver; callers may supply their own (for
// example a lazy or instrumented one) through WithUnvisitor.
type UnvisitorFactory func(entities Store, get EntityGetter) Unvisitor

// DenormalizeOption configures a single Denormalize call.
type DenormalizeOption func(*denormalizeConfig)

type denormalizeConfig struct {
	factory UnvisitorFactory
}

// WithUnvisitor replaces the default eager resolution strategy wholesale.
func WithUnvisitor(f UnvisitorFactory) DenormalizeOption {
	return func(c *denormalizeConfig) {
		if f != nil {
			c.factory = f
		}
	}
}

// Denormalize reconstructs the nested graph described by input (a skeleton of
// ids and tags produced by Normalize) from the flat entity store. A nil input
// is returned unchanged. Missing entities never fail: the schema fallback is
// consulted and unresolvable references pass through as-is. The only fatal
// case is a cycle through a Record, which cannot be patched in place.
func Denormalize(input any, s Schema, entities Store, opts ...DenormalizeOption) (any, error) {
	if input == nil {
		return nil, nil
	}
	if s == nil {
		return nil, Issues{Issue{Code: CodeInvalidSchema, Message: "nil schema"}}
	}
	cfg := denormalizeConfig{factory: NewUnvisitor}
	for _, opt := range opts {
		opt(&cfg)
	}
	u := cfg.factory(entities, entities.getter())
	return u.Unvisit(input, s)
}

func (s Store) getter() EntityGetter {
	return func(key, id string) any {
		e, _ := s.Entity(key, id)
		return e
	}
}

// NewUnvisitor returns the default eager Unvisitor over the given store view.
func NewUnvisitor(entities Store, get EntityGetter) Unvisitor {
	d := newDenormalizer(entities, get)
	d.self = d
	return d
}

// NewUnvisitorThrough returns the default eager driver with its recursive
// descent routed through the Unvisitor built by wrap, so wrapping strategies
// observe every step, not just the root. wrap receives the inner driver to
// delegate to.
func NewUnvisitorThrough(wrap func(inner Unvisitor) Unvisitor, entities Store, get EntityGetter) Unvisitor {
	d := newDenormalizer(entities, get)
	w := wrap(d)
	if w == nil {
		w = d
	}
	d.self = w
	return w
}

func newDenormalizer(entities Store, get EntityGetter) *denormalizer {
	if get == nil {
		get = entities.getter()
	}
	return &denormalizer{
		get:        get,
		cache:      make(map[string]map[string]any),
		inProgress: make(map[string]bool),
	}
}

// denormalizer is the per-call Unvisitor: the store view, the completion
// cache, and the set of (type, id) tokens currently being rebuilt. Recursion
// goes through self, which a wrapping strategy may interpose on.
type denormalizer struct {
	get        EntityGetter
	cache      map[string]map[string]any
	inProgress map[string]bool
	self       Unvisitor
}

func (d *denormalizer) Unvisit(value any, s Schema) (any, error) {
	if value == nil {
		return nil, nil
	}
	return s.Denormalize(value, d.self)
}

func (d *denormalizer) ResolveEntity(ref EntityRef, value any) (any, error) {
	// An already-nested object is used directly as the record: idempotent
	// pass-through for data that was never normalized. No caching; cycle
	// handling only applies to id-referenced records.
	switch rec := value.(type) {
	case map[string]any:
		return ref.DenormalizeFields(ident.ShallowCopy(rec), d.self)
	case Record:
		return ref.DenormalizeFields(rec, d.self)
	}

	key := ref.Key()
	id := ident.StringID(value)
	record := d.get(key, id)
	if record == nil {
		record = ref.Fallback(value)
	}
	if _, ok := record.(Record); !ok {
		if _, ok := record.(map[string]any); !ok {
			// Not an object: scalars and unresolved placeholders pass through.
			return value, nil
		}
	}

	token := key + ":" + id
	if d.inProgress[token] {
		cached := d.cache[key][id]
		if _, immutable := cached.(Record); immutable {
			return nil, Issues{Issue{
				Code:    CodeCircularReference,
				Message: "circular reference while denormalizing immutable record",
				Params:  map[string]any{"entity": key, "id": id},
			}}
		}
		// The cached map is still being filled; it is patched in place by the
		// time the outermost call returns, so handing it out now preserves
		// referential identity across the cycle.
		return cached, nil
	}
	if cached, ok := d.cache[key][id]; ok {
		return cached, nil
	}

	d.inProgress[token] = true
	var working any
	if r, ok := record.(Record); ok {
		working = r
	} else {
		working = ident.ShallowCopy(record.(map[string]any))
	}
	// Registered before recursing so that deeper references to (key, id)
	// resolve to this same value.
	d.setCache(key, id, working)
	out, err := ref.DenormalizeFields(working, d.self)
	delete(d.inProgress, token)
	if err != nil {
		return nil, err
	}
	// Map records were patched in place; Record values were rebuilt.
	d.setCache(key, id, out)
	return out, nil
}

func (d *denormalizer) setCache(key, id string, v any) {
	bucket, ok := d.cache[key]
	if !ok {
		bucket = make(map[string]any)
		d.cache[key] = bucket
	}
	bucket[id] = v
}
