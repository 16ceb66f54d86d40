package shape

import (
	"sort"
	"strings"
)

// Type is the JSON type a field must have.
type Type string

const (
	String  Type = "string"
	Integer Type = "integer"
	Number  Type = "number"
	Boolean Type = "boolean"
	Object  Type = "object"
	Array   Type = "array"
)

// Field describes one expected value. Path uses dots for nested objects.
type Field struct {
	Path     string
	Type     Type
	Required bool
}

func Required(path string, t Type) Field {
	return Field{Path: path, Type: t, Required: true}
}

func Optional(path string, t Type) Field {
	return Field{Path: path, Type: t}
}

type Shape struct {
	Name   string
	Fields []Field
}

func New(name string, fields ...Field) *Shape {
	return &Shape{Name: name, Fields: fields}
}

// With returns a copy of s extended with more fields.
func (s *Shape) With(fields ...Field) *Shape {
	out := &Shape{Name: s.Name, Fields: make([]Field, 0, len(s.Fields)+len(fields))}
	out.Fields = append(out.Fields, s.Fields...)
	out.Fields = append(out.Fields, fields...)
	return out
}

// Paths returns the declared field paths in declaration order.
func (s *Shape) Paths() []string {
	paths := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		paths[i] = f.Path
	}
	return paths
}

type node struct {
	typ      Type
	required bool
	children map[string]*node
}

func (n *node) child(name string) *node {
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c, ok := n.children[name]
	if !ok {
		c = &node{}
		n.children[name] = c
	}
	return c
}

// JSONSchema renders the shape as a draft-07 JSON Schema document. Nested
// parents of a required field are required objects themselves.
func (s *Shape) JSONSchema() map[string]any {
	root := &node{typ: Object}
	for _, f := range s.Fields {
		parts := strings.Split(f.Path, ".")
		cur := root
		for i, part := range parts {
			cur = cur.child(part)
			if i < len(parts)-1 {
				cur.typ = Object
				if f.Required {
					cur.required = true
				}
				continue
			}
			cur.typ = f.Type
			cur.required = cur.required || f.Required
		}
	}

	doc := render(root)
	doc["$schema"] = "http://json-schema.org/draft-07/schema#"
	if s.Name != "" {
		doc["title"] = s.Name
	}
	return doc
}

func render(n *node) map[string]any {
	out := map[string]any{}
	if n.typ != "" {
		out["type"] = string(n.typ)
	}
	if len(n.children) == 0 {
		return out
	}

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make(map[string]any, len(names))
	var required []string
	for _, name := range names {
		c := n.children[name]
		props[name] = render(c)
		if c.required {
			required = append(required, name)
		}
	}
	out["properties"] = props
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}
