package normalizr

import "github.com/nhusher/normalizr/internal/ident"

// Store is the flat entity store: entity type key to id to flat record. Ids
// are always string keys regardless of their source type. This is the only
// wire shape normalizr defines; it marshals directly to the persisted form
// { type: { id: record } }.
//
// A Store is created fresh by every Normalize call and handed back to the
// caller, who owns its lifetime. Record values may stand in for map records
// on the denormalize side.
type Store map[string]map[string]any

// Entity returns the stored record for (key, id), if any.
func (s Store) Entity(key, id string) (any, bool) {
	bucket, ok := s[key]
	if !ok {
		return nil, false
	}
	e, ok := bucket[id]
	return e, ok
}

// add merges or inserts a processed entity, creating the bucket lazily. On an
// id collision the existing record is replaced by merge(existing, incoming).
func (s Store) add(key string, id any, entity map[string]any, merge MergeFunc) {
	bucket, ok := s[key]
	if !ok {
		bucket = make(map[string]any)
		s[key] = bucket
	}
	sid := ident.StringID(id)
	if existing, ok := bucket[sid].(map[string]any); ok && merge != nil {
		bucket[sid] = merge(existing, entity)
		return
	}
	bucket[sid] = entity
}

// Normalized is the result of a Normalize call: the root skeleton referencing
// entities by id, plus the flat store.
type Normalized struct {
	Result   any   `json:"result"`
	Entities Store `json:"entities"`
}
