package analyzer

import (
	"encoding/json"

	"google.golang.org/genai"
)

// Schema types.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Schema is a provider-neutral description of the expected JSON response.
// It converts to a genai.Schema for Gemini and to JSON Schema for Claude
// and OpenAI.
type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	// Order keeps property order stable in prompts and Gemini requests.
	Order    []string
	Items    *Schema
	Required []string
	Enum     []string
}

// Object builds an object schema whose properties are given as name/schema
// pairs in order. Every property is required.
func Object(desc string, props ...Property) *Schema {
	s := &Schema{Type: TypeObject, Description: desc, Properties: make(map[string]*Schema, len(props))}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		s.Order = append(s.Order, p.Name)
		s.Required = append(s.Required, p.Name)
	}
	return s
}

// Property is a named object member.
type Property struct {
	Name   string
	Schema *Schema
}

// Prop is shorthand for a Property.
func Prop(name string, s *Schema) Property { return Property{Name: name, Schema: s} }

// String returns a string schema.
func String(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

// Number returns a number schema.
func Number(desc string) *Schema { return &Schema{Type: TypeNumber, Description: desc} }

// Enum returns a string schema restricted to values.
func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: desc, Enum: values}
}

// ArrayOf returns an array schema with the given item schema.
func ArrayOf(desc string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: desc, Items: items}
}

// Genai converts the schema for Gemini's ResponseSchema.
func (s *Schema) Genai() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = p.Genai()
		}
		out.PropertyOrdering = s.Order
	}
	if s.Items != nil {
		out.Items = s.Items.Genai()
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// JSONSchema returns the schema as a JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
		out["additionalProperties"] = false
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	return out
}

// MarshalJSON encodes the schema as JSON Schema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.JSONSchema())
}
