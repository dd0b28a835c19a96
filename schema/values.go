package schema

import (
	normalizr "github.com/nhusher/normalizr"
)

// ValuesSchema is a key-to-value map whose values share one schema, or pick
// one polymorphically. Keys are carried through unchanged.
type ValuesSchema struct {
	poly
}

// Values constructs a values schema over a single value schema.
func Values(elem normalizr.Schema) *ValuesSchema {
	return &ValuesSchema{poly: singlePoly(elem)}
}

// ValuesOf constructs a polymorphic values schema choosing each value's
// schema from mapping through disc.
func ValuesOf(mapping Mapping, disc Discriminator) *ValuesSchema {
	return &ValuesSchema{poly: mappedPoly(mapping, disc, "ValuesOf")}
}

func (vs *ValuesSchema) Normalize(value, parent any, key string, v normalizr.Visitor) (any, error) {
	input, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	out := make(map[string]any, len(input))
	for _, k := range sortedKeys(input) {
		el := input[k]
		if el == nil {
			continue
		}
		nv, err := vs.normalizeValue(el, input, k, v)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}
	return out, nil
}

func (vs *ValuesSchema) Denormalize(value any, u normalizr.Unvisitor) (any, error) {
	input, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	out := make(map[string]any, len(input))
	for _, k := range sortedKeys(input) {
		nv, err := vs.denormalizeValue(input[k], u)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}
	return out, nil
}
