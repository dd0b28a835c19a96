package schema

import (
	normalizr "github.com/nhusher/normalizr"
)

// Mapping associates discriminator keys with concrete schemas for the
// polymorphic containers.
type Mapping map[string]normalizr.Schema

// Discriminator selects which mapping key applies to a value. An empty
// result, or a result with no mapping entry, leaves the value unresolved:
// the element passes through untouched and no entity is produced.
type Discriminator func(value, parent any, key string) string

// ByField builds a discriminator reading a string field off the value.
func ByField(name string) Discriminator {
	return func(value, parent any, key string) string {
		m, ok := value.(map[string]any)
		if !ok {
			return ""
		}
		tag, _ := m[name].(string)
		return tag
	}
}

// poly is the shared element-resolution core of ArraySchema, ValuesSchema and
// UnionSchema: either a fixed single schema, or a discriminator plus a
// mapping. Multi-schema containers wrap normalized elements in an {id,
// schema} tag so denormalization can pick the right schema back out.
type poly struct {
	elem    normalizr.Schema
	mapping Mapping
	disc    Discriminator
}

func singlePoly(elem normalizr.Schema) poly {
	if elem == nil {
		panic("normalizr/schema: element schema must not be nil")
	}
	return poly{elem: elem}
}

func mappedPoly(mapping Mapping, disc Discriminator, variant string) poly {
	if len(mapping) == 0 {
		panic("normalizr/schema: " + variant + " requires a non-empty schema mapping")
	}
	if disc == nil {
		panic("normalizr/schema: " + variant + " requires a discriminator")
	}
	return poly{mapping: mapping, disc: disc}
}

func (p *poly) isSingle() bool { return p.mapping == nil }

func (p *poly) normalizeValue(value, parent any, key string, v normalizr.Visitor) (any, error) {
	if p.isSingle() {
		return v.Visit(value, parent, key, p.elem)
	}
	tag := p.disc(value, parent, key)
	s, ok := p.mapping[tag]
	if tag == "" || !ok {
		// Permissive by contract: unresolved elements pass through.
		return value, nil
	}
	id, err := v.Visit(value, parent, key, s)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "schema": tag}, nil
}

func (p *poly) denormalizeValue(value any, u normalizr.Unvisitor) (any, error) {
	if p.isSingle() {
		return u.Unvisit(value, p.elem)
	}
	tag, _ := tagField(value, "schema").(string)
	if tag == "" {
		// No entity-identifying tag: already-plain data stays untouched.
		return value, nil
	}
	s, ok := p.mapping[tag]
	if !ok {
		return value, nil
	}
	id := tagField(value, "id")
	if id == nil {
		id = value
	}
	return u.Unvisit(id, s)
}

// tagField reads a tag attribute off a normalized {id, schema} wrapper, which
// may be a plain map or an immutable Record.
func tagField(value any, name string) any {
	switch v := value.(type) {
	case map[string]any:
		return v[name]
	case normalizr.Record:
		fv, _ := v.Get(name)
		return fv
	}
	return nil
}
