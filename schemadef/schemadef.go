// Package schemadef loads declarative normalizr schema definitions from YAML
// or JSON documents and builds the corresponding schema graph. Definitions
// may be mutually recursive: entities are declared in one pass and their
// fields bound in a second, mirroring Define-based construction in code.
//
// Document shape:
//
//	root: users
//	entities:
//	  users:
//	    id: id
//	    fields:
//	      friends: [users]
//	      feed:
//	        list:
//	          mapping: {user: users, group: groups}
//	          discriminator: type
//	  groups:
//	    fields:
//	      owner: users
//
// Field expressions are: an entity name, a single-element sequence (list of
// that expression), or a mapping with exactly one of entity / list / values /
// object / mapping+discriminator.
package schemadef

import (
	"fmt"

	normalizr "github.com/nhusher/normalizr"
	"github.com/nhusher/normalizr/schema"
	"gopkg.in/yaml.v3"
)

// Definition is a parsed schema definition document.
type Definition struct {
	Root     *Node                `yaml:"root"`
	Entities map[string]EntityDef `yaml:"entities"`
}

// EntityDef declares one entity: its id attribute (default "id") and its
// nested-field expressions.
type EntityDef struct {
	ID     string           `yaml:"id"`
	Fields map[string]*Node `yaml:"fields"`
}

// Node is a field expression: exactly one of its forms is set.
type Node struct {
	Entity        string
	List          *Node
	Values        *Node
	Object        map[string]*Node
	Mapping       map[string]string
	Discriminator string
}

// nodeDoc is the mapping form of a Node as written in documents.
type nodeDoc struct {
	Entity        string            `yaml:"entity"`
	List          *Node             `yaml:"list"`
	Values        *Node             `yaml:"values"`
	Object        map[string]*Node  `yaml:"object"`
	Mapping       map[string]string `yaml:"mapping"`
	Discriminator string            `yaml:"discriminator"`
}

// UnmarshalYAML accepts the scalar, sequence and mapping forms of a field
// expression. yaml.v3 parses JSON documents as well, so one loader serves
// both formats.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("schemadef: empty entity reference at line %d", value.Line)
		}
		n.Entity = name
		return nil
	case yaml.SequenceNode:
		if len(value.Content) != 1 {
			return fmt.Errorf("schemadef: sequence shorthand needs exactly one element, found %d at line %d", len(value.Content), value.Line)
		}
		child := &Node{}
		if err := value.Content[0].Decode(child); err != nil {
			return err
		}
		n.List = child
		return nil
	case yaml.MappingNode:
		var doc nodeDoc
		if err := value.Decode(&doc); err != nil {
			return err
		}
		n.Entity = doc.Entity
		n.List = doc.List
		n.Values = doc.Values
		n.Object = doc.Object
		n.Mapping = doc.Mapping
		n.Discriminator = doc.Discriminator
		return n.check(value.Line)
	}
	return fmt.Errorf("schemadef: unsupported field expression at line %d", value.Line)
}

func (n *Node) check(line int) error {
	forms := 0
	if n.Entity != "" {
		forms++
	}
	if n.List != nil {
		forms++
	}
	if n.Values != nil {
		forms++
	}
	if n.Object != nil {
		forms++
	}
	if len(n.Mapping) > 0 {
		forms++
	}
	if forms != 1 {
		return fmt.Errorf("schemadef: field expression needs exactly one of entity/list/values/object/mapping, found %d at line %d", forms, line)
	}
	if len(n.Mapping) > 0 && n.Discriminator == "" {
		return fmt.Errorf("schemadef: mapping requires a discriminator at line %d", line)
	}
	if n.Discriminator != "" && len(n.Mapping) == 0 {
		return fmt.Errorf("schemadef: discriminator without a mapping at line %d", line)
	}
	return nil
}

// Load parses a definition document.
func Load(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("schemadef: invalid definition: %w", err)
	}
	if len(def.Entities) == 0 {
		return nil, fmt.Errorf("schemadef: definition declares no entities")
	}
	if def.Root == nil {
		return nil, fmt.Errorf("schemadef: definition has no root")
	}
	return &def, nil
}

// Build constructs the schema graph and returns the root schema.
func (d *Definition) Build() (normalizr.Schema, error) {
	entities, err := d.BuildEntities()
	if err != nil {
		return nil, err
	}
	return resolve(d.Root, entities)
}

// BuildEntities constructs every declared entity and binds their fields.
// Two passes: declare first, then Define, so definitions may be circular.
func (d *Definition) BuildEntities() (map[string]*schema.EntitySchema, error) {
	entities := make(map[string]*schema.EntitySchema, len(d.Entities))
	for name, def := range d.Entities {
		if name == "" {
			return nil, fmt.Errorf("schemadef: entity with empty name")
		}
		opts := []schema.EntityOption{}
		if def.ID != "" {
			opts = append(opts, schema.WithIDAttribute(def.ID))
		}
		entities[name] = schema.Entity(name, opts...)
	}
	for name, def := range d.Entities {
		fields := schema.Fields{}
		for fieldName, node := range def.Fields {
			s, err := resolve(node, entities)
			if err != nil {
				return nil, fmt.Errorf("schemadef: entity %q field %q: %w", name, fieldName, err)
			}
			fields[fieldName] = s
		}
		entities[name].Define(fields)
	}
	return entities, nil
}

func resolve(n *Node, entities map[string]*schema.EntitySchema) (normalizr.Schema, error) {
	switch {
	case n.Entity != "":
		e, ok := entities[n.Entity]
		if !ok {
			return nil, fmt.Errorf("unknown entity %q", n.Entity)
		}
		return e, nil
	case n.List != nil:
		if len(n.List.Mapping) > 0 {
			mapping, err := resolveMapping(n.List, entities)
			if err != nil {
				return nil, err
			}
			return schema.ArrayOf(mapping, schema.ByField(n.List.Discriminator)), nil
		}
		elem, err := resolve(n.List, entities)
		if err != nil {
			return nil, err
		}
		return schema.Array(elem), nil
	case n.Values != nil:
		if len(n.Values.Mapping) > 0 {
			mapping, err := resolveMapping(n.Values, entities)
			if err != nil {
				return nil, err
			}
			return schema.ValuesOf(mapping, schema.ByField(n.Values.Discriminator)), nil
		}
		elem, err := resolve(n.Values, entities)
		if err != nil {
			return nil, err
		}
		return schema.Values(elem), nil
	case n.Object != nil:
		fields := schema.Fields{}
		for name, child := range n.Object {
			s, err := resolve(child, entities)
			if err != nil {
				return nil, err
			}
			fields[name] = s
		}
		return schema.Object(fields), nil
	case len(n.Mapping) > 0:
		mapping, err := resolveMapping(n, entities)
		if err != nil {
			return nil, err
		}
		return schema.Union(mapping, schema.ByField(n.Discriminator)), nil
	}
	return nil, fmt.Errorf("empty field expression")
}

func resolveMapping(n *Node, entities map[string]*schema.EntitySchema) (schema.Mapping, error) {
	if n.Discriminator == "" {
		return nil, fmt.Errorf("mapping requires a discriminator")
	}
	mapping := make(schema.Mapping, len(n.Mapping))
	for tag, entityName := range n.Mapping {
		e, ok := entities[entityName]
		if !ok {
			return nil, fmt.Errorf("unknown entity %q for variant %q", entityName, tag)
		}
		mapping[tag] = e
	}
	return mapping, nil
}
