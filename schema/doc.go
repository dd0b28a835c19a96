// Package schema provides the normalizr schema variants and their
// constructors.
//
// Overview
//   - Entity(key, opts...): an identified record type tracked in the flat
//     store; Define(fields) merges nested-field declarations afterwards, which
//     is how circular schema graphs are declared across two statements.
//   - Object(fields), Array(elem), Values(elem): structural containers.
//   - ArrayOf / ValuesOf / Union: polymorphic containers choosing a concrete
//     schema per element through a Discriminator.
//   - Fields and Seq: bare map and single-element sequence shorthands usable
//     anywhere a schema is expected; they carry no entity identity.
//   - Resolver: a function schema resolved dynamically per value; in field
//     position it is resolved against the containing raw object.
//
// Entry points
//   - Entity("users", WithIDAttribute("slug"), WithMergeStrategy(m), ...)
//   - Union(Mapping{"users": user, "groups": group}, ByField("type"))
//   - Seq{user} and Fields{"owner": user} as inline shorthands.
//
// Construction failures (empty entity key, Union without a discriminator) are
// programmer errors and panic immediately. Traversal failures are reported as
// normalizr.Issues.
package schema
