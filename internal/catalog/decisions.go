package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Decisions is the typed decision set of one component. Exactly one concrete
// type exists per ComponentType.
type Decisions interface {
	ComponentType() ComponentType
	AsMap() map[string]any
}

type NavigationDecisions struct {
	Alignment  string `json:"alignment"`
	Density    string `json:"density"`
	Background string `json:"background"`
}

type HeroDecisions struct {
	Alignment  string `json:"alignment"`
	Layout     string `json:"layout"`
	Density    string `json:"density"`
	CTA        string `json:"cta"`
	Background string `json:"background"`
}

type FooterDecisions struct {
	Alignment     string `json:"alignment"`
	Layout        string `json:"layout"`
	Density       string `json:"density"`
	ShowCopyright bool   `json:"showCopyright"`
}

func (NavigationDecisions) ComponentType() ComponentType { return TypeNavigation }
func (HeroDecisions) ComponentType() ComponentType       { return TypeHero }
func (FooterDecisions) ComponentType() ComponentType     { return TypeFooter }

func (d NavigationDecisions) AsMap() map[string]any {
	return map[string]any{"alignment": d.Alignment, "density": d.Density, "background": d.Background}
}

func (d HeroDecisions) AsMap() map[string]any {
	return map[string]any{
		"alignment":  d.Alignment,
		"layout":     d.Layout,
		"density":    d.Density,
		"cta":        d.CTA,
		"background": d.Background,
	}
}

func (d FooterDecisions) AsMap() map[string]any {
	return map[string]any{
		"alignment":     d.Alignment,
		"layout":        d.Layout,
		"density":       d.Density,
		"showCopyright": d.ShowCopyright,
	}
}

// DecisionError lists every schema violation found in a decision set.
type DecisionError struct {
	Type   ComponentType
	Issues []string
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("invalid %s decisions: %s", e.Type, strings.Join(e.Issues, "; "))
}

var ErrUnknownType = errors.New("unknown component type")

// ParseDecisions checks raw against the schema of t and converts it to the typed
// decision set.
func ParseDecisions(t ComponentType, raw map[string]any) (Decisions, error) {
	m, ok := Lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if raw == nil {
		return nil, &DecisionError{Type: t, Issues: []string{"proposal is required"}}
	}
	if issues := m.CheckDecisions(raw); len(issues) > 0 {
		return nil, &DecisionError{Type: t, Issues: issues}
	}

	str := func(k string) string { s, _ := raw[k].(string); return s }
	switch t {
	case TypeNavigation:
		return NavigationDecisions{Alignment: str("alignment"), Density: str("density"), Background: str("background")}, nil
	case TypeHero:
		return HeroDecisions{
			Alignment:  str("alignment"),
			Layout:     str("layout"),
			Density:    str("density"),
			CTA:        str("cta"),
			Background: str("background"),
		}, nil
	default:
		show, _ := raw["showCopyright"].(bool)
		return FooterDecisions{Alignment: str("alignment"), Layout: str("layout"), Density: str("density"), ShowCopyright: show}, nil
	}
}

// DecodeDecisions parses a JSON object into the typed decision set of t.
func DecodeDecisions(t ComponentType, data []byte) (Decisions, error) {
	if len(data) == 0 || string(data) == "null" {
		return ParseDecisions(t, nil)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s proposal: %w", t, err)
	}
	return ParseDecisions(t, raw)
}
