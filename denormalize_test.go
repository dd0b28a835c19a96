package normalizr_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	normalizr "github.com/nhusher/normalizr"
	"github.com/nhusher/normalizr/schema"
)

func articleSchema() (*schema.EntitySchema, *schema.EntitySchema) {
	user := schema.Entity("users")
	article := schema.Entity("articles", schema.WithIDAttribute("slug"))
	article.Define(schema.Fields{
		"author":   user,
		"comments": schema.Seq{schema.Entity("comments")},
	})
	return article, user
}

func TestDenormalize_RoundTrip(t *testing.T) {
	article, _ := articleSchema()

	input := []any{
		map[string]any{
			"slug":   "one",
			"title":  "First",
			"author": map[string]any{"id": "1", "name": "Ann"},
			"comments": []any{
				map[string]any{"id": "c1", "body": "hi"},
			},
		},
		map[string]any{
			"slug":   "two",
			"title":  "Second",
			"author": map[string]any{"id": "2", "name": "Ben"},
		},
	}

	n, err := normalizr.Normalize(input, schema.Seq{article})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	out, err := normalizr.Denormalize(n.Result, schema.Seq{article}, n.Entities)
	if err != nil {
		t.Fatalf("Denormalize: %v", err)
	}
	if diff := cmp.Diff(input, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDenormalize_NilInputPassesThrough(t *testing.T) {
	article, _ := articleSchema()
	out, err := normalizr.Denormalize(nil, article, normalizr.Store{})
	if err != nil || out != nil {
		t.Fatalf("Denormalize(nil) = (%v, %v), want (nil, nil)", out, err)
	}
}

func TestDenormalize_IdempotentPassThrough(t *testing.T) {
	article, _ := articleSchema()

	// Entity fields already hold nested objects, not ids: they must come back
	// unchanged even with an empty store.
	input := map[string]any{
		"slug":   "one",
		"author": map[string]any{"id": "1", "name": "Ann"},
	}
	out, err := normalizr.Denormalize(input, article, normalizr.Store{})
	if err != nil {
		t.Fatalf("Denormalize: %v", err)
	}
	if diff := cmp.Diff(input, out); diff != "" {
		t.Fatalf("pass-through mismatch (-want +got):\n%s", diff)
	}
}

func TestDenormalize_ReferentialIdentityOnCycle(t *testing.T) {
	user := schema.Entity("users")
	user.Define(schema.Fields{"friends": schema.Seq{user}})

	entities := normalizr.Store{
		"users": {
			"123": map[string]any{"id": "123", "friends": []any{"123"}},
		},
	}
	out, err := normalizr.Denormalize("123", user, entities)
	if err != nil {
		t.Fatalf("Denormalize: %v", err)
	}
	root := out.(map[string]any)
	friend := root["friends"].([]any)[0].(map[string]any)

	// The cyclic reference must resolve to the very same instance.
	root["probe"] = true
	if friend["probe"] != true {
		t.Fatalf("cyclic reference is not the same instance as the root")
	}
}

func TestDenormalize_SharedEntityIsSameInstance(t *testing.T) {
	article, _ := articleSchema()

	entities := normalizr.Store{
		"articles": {
			"one": map[string]any{"slug": "one", "author": "1"},
			"two": map[string]any{"slug": "two", "author": "1"},
		},
		"users": {
			"1": map[string]any{"id": "1", "name": "Ann"},
		},
	}
	out, err := normalizr.Denormalize([]any{"one", "two"}, schema.Seq{article}, entities)
	if err != nil {
		t.Fatalf("Denormalize: %v", err)
	}
	list := out.([]any)
	a := list[0].(map[string]any)["author"].(map[string]any)
	b := list[1].(map[string]any)["author"].(map[string]any)
	a["probe"] = true
	if b["probe"] != true {
		t.Fatalf("shared author is not the same instance across articles")
	}
}

func TestDenormalize_FallbackSubstitution(t *testing.T) {
	user := schema.Entity("users", schema.WithFallback(func(key string, id any) any {
		return map[string]any{"id": id, "name": "unknown"}
	}))
	article := schema.Entity("articles", schema.WithIDAttribute("slug"))
	article.Define(schema.Fields{"author": user})

	entities := normalizr.Store{
		"articles": {"one": map[string]any{"slug": "one", "author": "404"}},
	}
	out, err := normalizr.Denormalize("one", article, entities)
	if err != nil {
		t.Fatalf("Denormalize: %v", err)
	}
	author := out.(map[string]any)["author"].(map[string]any)
	if author["name"] != "unknown" || author["id"] != "404" {
		t.Fatalf("fallback author = %v", author)
	}
}

func TestDenormalize_MissingEntityPassesThrough(t *testing.T) {
	article, _ := articleSchema()
	entities := normalizr.Store{
		"articles": {"one": map[string]any{"slug": "one", "author": "404"}},
	}
	out, err := normalizr.Denormalize("one", article, entities)
	if err != nil {
		t.Fatalf("Denormalize: %v", err)
	}
	if got := out.(map[string]any)["author"]; got != "404" {
		t.Fatalf("missing author = %v, want bare id 404", got)
	}
}

// countingUnvisitor wraps the default driver and records every entity
// resolution, exercising the resolution-strategy seam.
type countingUnvisitor struct {
	inner normalizr.Unvisitor
	seen  *[]string
}

func (c countingUnvisitor) Unvisit(value any, s normalizr.Schema) (any, error) {
	return c.inner.Unvisit(value, s)
}

func (c countingUnvisitor) ResolveEntity(ref normalizr.EntityRef, value any) (any, error) {
	*c.seen = append(*c.seen, ref.Key()+":"+normalizr.StringID(value))
	return c.inner.ResolveEntity(ref, value)
}

func TestDenormalize_CustomUnvisitorFactory(t *testing.T) {
	article, _ := articleSchema()
	entities := normalizr.Store{
		"articles": {"one": map[string]any{"slug": "one", "author": "1"}},
		"users":    {"1": map[string]any{"id": "1", "name": "Ann"}},
	}

	var seen []string
	factory := func(store normalizr.Store, get normalizr.EntityGetter) normalizr.Unvisitor {
		return normalizr.NewUnvisitorThrough(func(inner normalizr.Unvisitor) normalizr.Unvisitor {
			return countingUnvisitor{inner: inner, seen: &seen}
		}, store, get)
	}

	_, err := normalizr.Denormalize("one", article, entities, normalizr.WithUnvisitor(factory))
	if err != nil {
		t.Fatalf("Denormalize: %v", err)
	}
	want := []string{"articles:one", "users:1"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("resolved entities mismatch (-want +got):\n%s", diff)
	}
}
