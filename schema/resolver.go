package schema

import (
	normalizr "github.com/nhusher/normalizr"
)

// Resolver is the dynamic schema variant: a function producing the schema to
// apply per value. In an entity or object field position the resolver is
// invoked with the containing raw object before the child visit; used
// directly (for example as an array element schema) it is invoked with the
// value itself. A nil result leaves the value untouched.
type Resolver func(value any) normalizr.Schema

func (r Resolver) Normalize(value, parent any, key string, v normalizr.Visitor) (any, error) {
	s := r(value)
	if s == nil {
		return value, nil
	}
	return v.Visit(value, parent, key, s)
}

func (r Resolver) Denormalize(value any, u normalizr.Unvisitor) (any, error) {
	s := r(value)
	if s == nil {
		return value, nil
	}
	return u.Unvisit(value, s)
}
