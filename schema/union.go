package schema

import (
	normalizr "github.com/nhusher/normalizr"
)

// UnionSchema is a single polymorphic value chosen by a discriminator. A
// union is always polymorphic, so normalized values are always tagged with
// {id, schema}.
type UnionSchema struct {
	poly
}

// Union constructs a union schema. It panics when mapping is empty or disc is
// nil; a union without a discriminator cannot select a variant.
func Union(mapping Mapping, disc Discriminator) *UnionSchema {
	return &UnionSchema{poly: mappedPoly(mapping, disc, "Union")}
}

func (us *UnionSchema) Normalize(value, parent any, key string, v normalizr.Visitor) (any, error) {
	return us.normalizeValue(value, parent, key, v)
}

func (us *UnionSchema) Denormalize(value any, u normalizr.Unvisitor) (any, error) {
	return us.denormalizeValue(value, u)
}
