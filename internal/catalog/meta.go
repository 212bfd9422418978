// Package catalog holds the static component metadata registry: the decision
// space and content contract of every UI component Drafte can place on a page.
package catalog

import (
	"fmt"
	"slices"
	"strings"
)

type ComponentType string

const (
	TypeNavigation ComponentType = "navigation"
	TypeHero       ComponentType = "hero"
	TypeFooter     ComponentType = "footer"
)

// RequiredTypes lists the component types every discovery must propose, in page order.
var RequiredTypes = []ComponentType{TypeNavigation, TypeHero, TypeFooter}

type AxisKind string

const (
	AxisEnum    AxisKind = "enum"
	AxisBoolean AxisKind = "boolean"
)

// Axis is one decision dimension of a component.
type Axis struct {
	Name         string            `json:"name"`
	Kind         AxisKind          `json:"type"`
	Options      []string          `json:"options,omitempty"`
	Default      any               `json:"default"`
	Label        string            `json:"label"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
}

type FieldKind string

const (
	FieldString FieldKind = "string"
	FieldArray  FieldKind = "array"
)

// Field is one content slot a component renders.
type Field struct {
	Name        string    `json:"name"`
	Kind        FieldKind `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
	MinItems    int       `json:"minItems,omitempty"`
	MaxItems    int       `json:"maxItems,omitempty"`
}

type Meta struct {
	ID             ComponentType `json:"id"`
	Name           string        `json:"name"`
	Category       string        `json:"category"`
	Description    string        `json:"description"`
	Tags           []string      `json:"tags"`
	Intents        []string      `json:"intents"`
	UseCases       []string      `json:"useCases"`
	DecisionSchema []Axis        `json:"decisionSchema"`
	ContentSchema  []Field       `json:"contentSchema"`
	Version        string        `json:"version"`
}

var registry = map[ComponentType]*Meta{
	TypeNavigation: &navigationMeta,
	TypeHero:       &heroMeta,
	TypeFooter:     &footerMeta,
}

// Lookup returns the metadata for a component type.
func Lookup(t ComponentType) (*Meta, bool) {
	m, ok := registry[t]
	return m, ok
}

// All returns every registered component in page order.
func All() []*Meta {
	out := make([]*Meta, 0, len(RequiredTypes))
	for _, t := range RequiredTypes {
		out = append(out, registry[t])
	}
	return out
}

// IsKnownType reports whether t names a registered component.
func IsKnownType(t string) bool {
	_, ok := registry[ComponentType(t)]
	return ok
}

// BaseType strips the multiplicity suffix from a component key ("hero_1" -> "hero").
func BaseType(componentKey string) ComponentType {
	if i := strings.LastIndexByte(componentKey, '_'); i > 0 {
		if IsKnownType(componentKey[:i]) {
			return ComponentType(componentKey[:i])
		}
	}
	return ComponentType(componentKey)
}

func (m *Meta) Axis(name string) (Axis, bool) {
	for _, a := range m.DecisionSchema {
		if a.Name == name {
			return a, true
		}
	}
	return Axis{}, false
}

func (m *Meta) Field(name string) (Field, bool) {
	for _, f := range m.ContentSchema {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns the default decision map for the component.
func (m *Meta) Defaults() map[string]any {
	out := make(map[string]any, len(m.DecisionSchema))
	for _, a := range m.DecisionSchema {
		out[a.Name] = a.Default
	}
	return out
}

// CheckDecisions reports every axis of the schema that is missing from raw or
// holds a value outside its declared options. Keys not in the schema are ignored.
func (m *Meta) CheckDecisions(raw map[string]any) []string {
	var errs []string
	for _, a := range m.DecisionSchema {
		v, ok := raw[a.Name]
		if !ok || v == nil {
			errs = append(errs, fmt.Sprintf("missing %s %s", m.ID, a.Name))
			continue
		}
		switch a.Kind {
		case AxisBoolean:
			if _, ok := v.(bool); !ok {
				errs = append(errs, fmt.Sprintf("invalid %s %s: %v (expected boolean)", m.ID, a.Name, v))
			}
		case AxisEnum:
			s, ok := v.(string)
			if !ok || !slices.Contains(a.Options, s) {
				errs = append(errs, fmt.Sprintf("invalid %s %s: %q (expected one of %s)",
					m.ID, a.Name, fmt.Sprint(v), strings.Join(a.Options, ", ")))
			}
		}
	}
	return errs
}
