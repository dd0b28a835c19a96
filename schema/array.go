package schema

import (
	"fmt"

	normalizr "github.com/nhusher/normalizr"
)

// Seq is the bare sequence shorthand: a single-element sequence whose one
// schema applies to every element. It introduces no parent context of its
// own; elements are visited with the caller's parent and key.
type Seq []normalizr.Schema

func (s Seq) Normalize(value, parent any, key string, v normalizr.Visitor) (any, error) {
	elem, err := s.element(key)
	if err != nil {
		return nil, err
	}
	values, ok := sequenceValues(value)
	if !ok {
		return value, nil
	}
	out := make([]any, 0, len(values))
	for _, el := range values {
		nv, err := v.Visit(el, parent, key, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, nv)
	}
	return out, nil
}

func (s Seq) Denormalize(value any, u normalizr.Unvisitor) (any, error) {
	elem, err := s.element("")
	if err != nil {
		return nil, err
	}
	list, ok := value.([]any)
	if !ok {
		return value, nil
	}
	out := make([]any, 0, len(list))
	for _, el := range list {
		nv, err := u.Unvisit(el, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, nv)
	}
	return out, nil
}

func (s Seq) element(key string) (normalizr.Schema, error) {
	if len(s) != 1 {
		return nil, normalizr.Issues{normalizr.Issue{
			Path:    key,
			Code:    normalizr.CodeInvalidSchema,
			Message: fmt.Sprintf("expected a sequence shorthand with a single schema, found %d", len(s)),
		}}
	}
	return s[0], nil
}

// ArraySchema is the explicit sequence variant, optionally polymorphic. It
// also accepts map-like input, treating the values as the sequence, and drops
// elements that normalize to nil.
type ArraySchema struct {
	poly
}

// Array constructs an array schema over a single element schema.
func Array(elem normalizr.Schema) *ArraySchema {
	return &ArraySchema{poly: singlePoly(elem)}
}

// ArrayOf constructs a polymorphic array schema choosing each element's
// schema from mapping through disc.
func ArrayOf(mapping Mapping, disc Discriminator) *ArraySchema {
	return &ArraySchema{poly: mappedPoly(mapping, disc, "ArrayOf")}
}

func (a *ArraySchema) Normalize(value, parent any, key string, v normalizr.Visitor) (any, error) {
	values, ok := sequenceValues(value)
	if !ok {
		return value, nil
	}
	out := make([]any, 0, len(values))
	for _, el := range values {
		nv, err := a.normalizeValue(el, parent, key, v)
		if err != nil {
			return nil, err
		}
		if nv == nil {
			continue
		}
		out = append(out, nv)
	}
	return out, nil
}

func (a *ArraySchema) Denormalize(value any, u normalizr.Unvisitor) (any, error) {
	list, ok := value.([]any)
	if !ok {
		return value, nil
	}
	out := make([]any, 0, len(list))
	for _, el := range list {
		nv, err := a.denormalizeValue(el, u)
		if err != nil {
			return nil, err
		}
		out = append(out, nv)
	}
	return out, nil
}

// sequenceValues yields the elements a sequence schema applies to: the input
// itself when it is an array, or the values of a map-like input in sorted key
// order for determinism.
func sequenceValues(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case map[string]any:
		out := make([]any, 0, len(v))
		for _, k := range sortedKeys(v) {
			out = append(out, v[k])
		}
		return out, true
	}
	return nil, false
}
