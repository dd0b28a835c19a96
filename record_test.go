package normalizr_test

import (
	"testing"

	normalizr "github.com/nhusher/normalizr"
	"github.com/nhusher/normalizr/schema"
)

// record is a copy-on-write test container implementing normalizr.Record.
type record map[string]any

func (r record) Get(key string) (any, bool) { v, ok := r[key]; return v, ok }

func (r record) Has(key string) bool { _, ok := r[key]; return ok }

func (r record) Set(key string, value any) normalizr.Record {
	out := make(record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[key] = value
	return out
}

func TestDenormalize_RecordThreadsSet(t *testing.T) {
	user := schema.Entity("users")
	article := schema.Entity("articles", schema.WithIDAttribute("slug"))
	article.Define(schema.Fields{"author": user})

	entities := normalizr.Store{
		"articles": {"one": record{"slug": "one", "author": "1"}},
		"users":    {"1": record{"id": "1", "name": "Ann"}},
	}
	out, err := normalizr.Denormalize("one", article, entities)
	if err != nil {
		t.Fatalf("Denormalize: %v", err)
	}
	rec, ok := out.(normalizr.Record)
	if !ok {
		t.Fatalf("expected a Record result, got %T", out)
	}
	author, _ := rec.Get("author")
	authorRec, ok := author.(normalizr.Record)
	if !ok {
		t.Fatalf("expected author to be a Record, got %T", author)
	}
	if name, _ := authorRec.Get("name"); name != "Ann" {
		t.Fatalf("author name = %v, want Ann", name)
	}

	// The stored record must not have been patched in place.
	if stored := entities["articles"]["one"].(record); stored["author"] != "1" {
		t.Fatalf("stored record was mutated: %v", stored)
	}
}

func TestDenormalize_RecordCycleIsFatal(t *testing.T) {
	user := schema.Entity("users")
	user.Define(schema.Fields{"friends": schema.Seq{user}})

	entities := normalizr.Store{
		"users": {
			"123": record{"id": "123", "friends": []any{"123"}},
		},
	}
	_, err := normalizr.Denormalize("123", user, entities)
	iss, ok := normalizr.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected issues, got %v", err)
	}
	if iss[0].Code != normalizr.CodeCircularReference {
		t.Fatalf("code = %q, want %q", iss[0].Code, normalizr.CodeCircularReference)
	}
	if iss[0].Params["entity"] != "users" || iss[0].Params["id"] != "123" {
		t.Fatalf("issue params = %v, want entity users id 123", iss[0].Params)
	}
}
