package schema

import (
	"sort"

	normalizr "github.com/nhusher/normalizr"
	"github.com/nhusher/normalizr/internal/ident"
)

// Fields is the bare map shorthand: a structural field-to-schema mapping with
// no entity identity and no strategies of its own.
type Fields map[string]normalizr.Schema

func (f Fields) Normalize(value, parent any, key string, v normalizr.Visitor) (any, error) {
	return normalizeFields(f, value, v)
}

func (f Fields) Denormalize(value any, u normalizr.Unvisitor) (any, error) {
	return denormalizeFields(f, value, u)
}

// ObjectSchema is the explicit structural object variant. It shares its
// traversal with the Fields shorthand.
type ObjectSchema struct {
	fields Fields
}

// Object constructs a structural object schema over the given field map.
func Object(fields Fields) *ObjectSchema {
	if fields == nil {
		fields = Fields{}
	}
	return &ObjectSchema{fields: fields}
}

func (o *ObjectSchema) Normalize(value, parent any, key string, v normalizr.Visitor) (any, error) {
	return normalizeFields(o.fields, value, v)
}

func (o *ObjectSchema) Denormalize(value any, u normalizr.Unvisitor) (any, error) {
	return denormalizeFields(o.fields, value, u)
}

// normalizeFields copies the input and replaces each declared field with its
// normalized form, dropping fields that resolve to nil. Undeclared fields
// are carried over untouched.
func normalizeFields(fields Fields, value any, v normalizr.Visitor) (any, error) {
	input, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	out := ident.ShallowCopy(input)
	for _, name := range sortedKeys(fields) {
		fs := fields[name]
		if r, isResolver := fs.(Resolver); isResolver {
			if fs = r(input); fs == nil {
				continue
			}
		}
		nv, err := v.Visit(input[name], input, name, fs)
		if err != nil {
			return nil, err
		}
		if nv == nil {
			delete(out, name)
		} else {
			out[name] = nv
		}
	}
	return out, nil
}

func denormalizeFields(fields Fields, value any, u normalizr.Unvisitor) (any, error) {
	if rec, ok := value.(normalizr.Record); ok {
		out := rec
		for _, name := range sortedKeys(fields) {
			if !out.Has(name) {
				continue
			}
			fv, _ := out.Get(name)
			nv, err := u.Unvisit(fv, fields[name])
			if err != nil {
				return nil, err
			}
			out = out.Set(name, nv)
		}
		return out, nil
	}
	input, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	out := ident.ShallowCopy(input)
	for _, name := range sortedKeys(fields) {
		fv, present := out[name]
		if !present {
			continue
		}
		nv, err := u.Unvisit(fv, fields[name])
		if err != nil {
			return nil, err
		}
		out[name] = nv
	}
	return out, nil
}

// sortedKeys returns map keys in ascending order for deterministic traversal.
func sortedKeys[V any, M ~map[string]V](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
