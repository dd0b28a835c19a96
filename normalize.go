package normalizr

import (
	"github.com/nhusher/normalizr/internal/ident"
)

// Normalize flattens a nested object graph into an id-keyed Store plus a root
// skeleton referencing entities by id. The input must be a non-nil object or
// array; primitives are rejected because they can never carry entities.
//
// Validation failures abort the whole call: on error no partial store is
// returned.
func Normalize(input any, s Schema) (*Normalized, error) {
	if s == nil {
		return nil, Issues{Issue{Code: CodeInvalidSchema, Message: "nil schema"}}
	}
	if !ident.IsObjectLike(input) {
		return nil, Issues{Issue{
			Code:    CodeInvalidType,
			Message: "unexpected input given to Normalize",
			Hint:    "expected an object or array, got " + ident.Kind(input),
			Params:  map[string]any{"kind": ident.Kind(input)},
		}}
	}
	n := &normalizer{
		store:   make(Store),
		visited: make(map[string]map[string][]any),
	}
	result, err := n.Visit(input, nil, "", s)
	if err != nil {
		return nil, err
	}
	return &Normalized{Result: result, Entities: n.store}, nil
}

// normalizer is the per-call Visitor: the store under construction plus the
// visited-reference tracker keyed by type and id.
type normalizer struct {
	store   Store
	visited map[string]map[string][]any
}

func (n *normalizer) Visit(value, parent any, key string, s Schema) (any, error) {
	if !ident.IsObjectLike(value) {
		return value, nil
	}
	return s.Normalize(value, parent, key, n)
}

func (n *normalizer) AddEntity(key string, id any, entity map[string]any, merge MergeFunc) {
	n.store.add(key, id, entity, merge)
}

func (n *normalizer) VisitedBefore(key string, id any, ref any) bool {
	byID, ok := n.visited[key]
	if !ok {
		byID = make(map[string][]any)
		n.visited[key] = byID
	}
	sid := ident.StringID(id)
	for _, seen := range byID[sid] {
		if ident.SameRef(seen, ref) {
			return true
		}
	}
	byID[sid] = append(byID[sid], ref)
	return false
}
