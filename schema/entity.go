package schema

import (
	"fmt"
	"sort"

	normalizr "github.com/nhusher/normalizr"
	"github.com/nhusher/normalizr/internal/ident"
)

// IDFunc extracts an entity id from the raw, unprocessed input.
type IDFunc func(value map[string]any, parent any, key string) any

// ProcessFunc transforms the raw input into the field set actually stored.
// It runs after id extraction, so transforms never destabilize identity.
type ProcessFunc func(value map[string]any, parent any, key string) map[string]any

// ValidateFunc adds custom input checks on top of the structural one (input
// must be a non-nil, non-array object). A non-nil error aborts the whole
// Normalize call.
type ValidateFunc func(value any) error

// FallbackFunc synthesizes a substitute for an entity missing from the store
// during denormalization. A nil result means no substitute.
type FallbackFunc func(key string, id any) any

// EntitySchema is a named, identified record type. Its nested-field map
// routes normalization into child schemas; its strategies make validation,
// identity, collision merging and missing-entity fallback pluggable.
type EntitySchema struct {
	key      string
	idAttr   string
	idFunc   IDFunc
	fields   Fields
	process  ProcessFunc
	merge    normalizr.MergeFunc
	fallback FallbackFunc
	validate ValidateFunc

	sortedFields []string
}

// EntityOption configures an EntitySchema at construction.
type EntityOption func(*EntitySchema)

// WithIDAttribute selects the raw-input field holding the entity id.
// The default is "id".
func WithIDAttribute(name string) EntityOption {
	return func(e *EntitySchema) { e.idAttr = name }
}

// WithIDFunc replaces attribute-based id extraction with a function over the
// raw input, its parent and key.
func WithIDFunc(fn IDFunc) EntityOption {
	return func(e *EntitySchema) { e.idFunc = fn }
}

// WithMergeStrategy replaces the default shallow last-write-wins merge used
// on id collisions.
func WithMergeStrategy(fn normalizr.MergeFunc) EntityOption {
	return func(e *EntitySchema) { e.merge = fn }
}

// WithProcessStrategy installs a pre-normalization transform.
func WithProcessStrategy(fn ProcessFunc) EntityOption {
	return func(e *EntitySchema) { e.process = fn }
}

// WithFallback installs a substitute source for entities missing from the
// store during denormalization.
func WithFallback(fn FallbackFunc) EntityOption {
	return func(e *EntitySchema) { e.fallback = fn }
}

// WithValidate installs custom input validation.
func WithValidate(fn ValidateFunc) EntityOption {
	return func(e *EntitySchema) { e.validate = fn }
}

// Entity constructs an entity schema. It panics when key is empty; a
// keyless entity has no store bucket and is always a programmer error.
func Entity(key string, opts ...EntityOption) *EntitySchema {
	if key == "" {
		panic("normalizr/schema: Entity requires a non-empty string key")
	}
	e := &EntitySchema{
		key:    key,
		idAttr: "id",
		fields: Fields{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Define merges additional nested-field declarations into the schema. Earlier
// declarations survive unless redefined, so mutually recursive entities can
// reference each other after both are constructed.
func (e *EntitySchema) Define(fields Fields) *EntitySchema {
	for name, s := range fields {
		e.fields[name] = s
	}
	e.sortedFields = nil
	return e
}

// Key returns the entity type key, the store bucket name.
func (e *EntitySchema) Key() string { return e.key }

// ID extracts the entity id from the raw, unprocessed input.
func (e *EntitySchema) ID(value map[string]any, parent any, key string) any {
	if e.idFunc != nil {
		return e.idFunc(value, parent, key)
	}
	return value[e.idAttr]
}

func (e *EntitySchema) Normalize(value, parent any, key string, v normalizr.Visitor) (any, error) {
	input, ok := value.(map[string]any)
	if !ok {
		return nil, normalizr.Issues{normalizr.Issue{
			Path:    key,
			Code:    normalizr.CodeInvalidValue,
			Message: fmt.Sprintf("invalid input for entity %q", e.key),
			Hint:    "expected an object, got " + ident.Kind(value),
			Params:  map[string]any{"entity": e.key, "kind": ident.Kind(value)},
		}}
	}
	if e.validate != nil {
		if err := e.validate(input); err != nil {
			return nil, normalizr.Issues{normalizr.Issue{
				Path:    key,
				Code:    normalizr.CodeInvalidValue,
				Message: fmt.Sprintf("invalid input for entity %q", e.key),
				Cause:   err,
				Params:  map[string]any{"entity": e.key, "kind": ident.Kind(value)},
			}}
		}
	}

	id := e.ID(input, parent, key)
	if ident.StringID(id) == "" {
		return nil, normalizr.Issues{normalizr.Issue{
			Path:    key,
			Code:    normalizr.CodeMissingID,
			Message: fmt.Sprintf("entity %q has no id", e.key),
			Hint:    "expected attribute " + e.idAttr,
			Params:  map[string]any{"entity": e.key},
		}}
	}

	// Literal re-entrance through the very same input reference terminates
	// here; distinct objects sharing an id are each processed and merged.
	if v.VisitedBefore(e.key, id, value) {
		return id, nil
	}

	processed := e.applyProcess(input, parent, key)
	for _, name := range e.fieldNames() {
		fv, present := processed[name]
		if !present || !ident.IsObjectLike(fv) {
			continue
		}
		fs := e.fields[name]
		if r, isResolver := fs.(Resolver); isResolver {
			// Dynamic slots resolve against the raw input, not the processed
			// field set.
			if fs = r(value); fs == nil {
				continue
			}
		}
		nv, err := v.Visit(fv, processed, name, fs)
		if err != nil {
			return nil, err
		}
		processed[name] = nv
	}

	v.AddEntity(e.key, id, processed, e.mergeStrategy())
	return id, nil
}

func (e *EntitySchema) Denormalize(value any, u normalizr.Unvisitor) (any, error) {
	return u.ResolveEntity(e, value)
}

// Fallback implements normalizr.EntityRef.
func (e *EntitySchema) Fallback(id any) any {
	if e.fallback == nil {
		return nil
	}
	return e.fallback(e.key, id)
}

// DenormalizeFields implements normalizr.EntityRef: it rebuilds the declared
// nested fields of a record handed over by the denormalize driver. Map
// records are patched in place; Record values are rebuilt by threading Set.
func (e *EntitySchema) DenormalizeFields(record any, u normalizr.Unvisitor) (any, error) {
	switch rec := record.(type) {
	case map[string]any:
		for _, name := range e.fieldNames() {
			fv, present := rec[name]
			if !present {
				continue
			}
			nv, err := u.Unvisit(fv, e.fields[name])
			if err != nil {
				return nil, err
			}
			rec[name] = nv
		}
		return rec, nil
	case normalizr.Record:
		out := rec
		for _, name := range e.fieldNames() {
			if !out.Has(name) {
				continue
			}
			fv, _ := out.Get(name)
			nv, err := u.Unvisit(fv, e.fields[name])
			if err != nil {
				return nil, err
			}
			out = out.Set(name, nv)
		}
		return out, nil
	}
	return record, nil
}

func (e *EntitySchema) applyProcess(input map[string]any, parent any, key string) map[string]any {
	if e.process != nil {
		return e.process(input, parent, key)
	}
	return ident.ShallowCopy(input)
}

func (e *EntitySchema) mergeStrategy() normalizr.MergeFunc {
	if e.merge != nil {
		return e.merge
	}
	return defaultMerge
}

// defaultMerge is a shallow field-wise union where incoming wins. The outcome
// depends on traversal order; callers needing stronger guarantees supply
// their own strategy.
func defaultMerge(existing, incoming map[string]any) map[string]any {
	out := ident.ShallowCopy(existing)
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

func (e *EntitySchema) fieldNames() []string {
	if e.sortedFields == nil {
		names := make([]string, 0, len(e.fields))
		for name := range e.fields {
			names = append(names, name)
		}
		sort.Strings(names)
		e.sortedFields = names
	}
	return e.sortedFields
}
