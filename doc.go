package normalizr

// Package normalizr converts deeply nested object graphs into a flat,
// identity-keyed entity store and reconstructs the nested shape from it:
//
// - Normalize: raw graph + schema -> {Result, Entities}, where Result is the
//   root skeleton referencing entities by id and Entities is the flat store.
// - Denormalize: skeleton + store + schema -> reconstructed graph, with
//   referentially stable handling of shared and circular references.
// - A stable error model via Issues (code, message, structured params).
//
// Design policy:
// - Keep only contracts and drivers in the root package; schema variants live
//   under schema/, declarative definitions under schemadef/, the CLI under
//   cmd/normalizr.
// - No global state: each call threads its own store, visited-set, cache and
//   in-progress set through the recursion.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := schema.Entity("users")
//	user.Define(schema.Fields{"friends": schema.Seq{user}})
//
//	n, err := normalizr.Normalize(input, user)
//	out, err := normalizr.Denormalize(n.Result, user, n.Entities)
