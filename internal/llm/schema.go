package llm

import (
	"encoding/json"

	vertex "cloud.google.com/go/vertexai/genai"
	gemini "github.com/google/generative-ai-go/genai"
)

// Schema types
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Schema is a provider-neutral description of a JSON response shape
type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
}

// JSONSchema renders s as a JSON Schema document
func (s *Schema) JSONSchema() ([]byte, error) {
	doc := s.jsonSchemaMap()
	doc["$schema"] = "http://json-schema.org/draft-07/schema#"
	return json.Marshal(doc)
}

func (s *Schema) jsonSchemaMap() map[string]any {
	m := map[string]any{"type": s.Type}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.jsonSchemaMap()
		}
		m["properties"] = props
	}
	if s.Items != nil {
		m["items"] = s.Items.jsonSchemaMap()
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return m
}

func (s *Schema) toGemini() *gemini.Schema {
	if s == nil {
		return nil
	}
	out := &gemini.Schema{
		Type:        geminiType(s.Type),
		Description: s.Description,
		Items:       s.Items.toGemini(),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*gemini.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.toGemini()
		}
	}
	return out
}

func geminiType(t string) gemini.Type {
	switch t {
	case TypeObject:
		return gemini.TypeObject
	case TypeArray:
		return gemini.TypeArray
	case TypeNumber:
		return gemini.TypeNumber
	case TypeInteger:
		return gemini.TypeInteger
	case TypeBoolean:
		return gemini.TypeBoolean
	default:
		return gemini.TypeString
	}
}

func (s *Schema) toVertex() *vertex.Schema {
	if s == nil {
		return nil
	}
	out := &vertex.Schema{
		Type:        vertexType(s.Type),
		Description: s.Description,
		Items:       s.Items.toVertex(),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*vertex.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.toVertex()
		}
	}
	return out
}

func vertexType(t string) vertex.Type {
	switch t {
	case TypeObject:
		return vertex.TypeObject
	case TypeArray:
		return vertex.TypeArray
	case TypeNumber:
		return vertex.TypeNumber
	case TypeInteger:
		return vertex.TypeInteger
	case TypeBoolean:
		return vertex.TypeBoolean
	default:
		return vertex.TypeString
	}
}
