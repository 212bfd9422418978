// Package variations derives a short list of alternative decision sets from a
// recommended one, each differing from it in exactly one axis.
package variations

import (
	"fmt"

	"github.com/drafte-app/drafte-backend/internal/catalog"
)

const RecommendedLabel = "Discovery Recommended"

const (
	MaxHero       = 4
	MaxNavigation = 3
	MaxFooter     = 2
)

type Variation[D catalog.Decisions] struct {
	Decisions   D      `json:"decisions"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Option is the untyped form of a Variation, as served to the selection UI.
type Option struct {
	Decisions   map[string]any `json:"decisions"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Recommended bool           `json:"recommended"`
}

// ForComponent parses decisions for the component's base type and returns its
// variations. The first option is always the input itself.
func ForComponent(componentKey string, decisions map[string]any) ([]Option, error) {
	t := catalog.BaseType(componentKey)
	d, err := catalog.ParseDecisions(t, decisions)
	if err != nil {
		return nil, fmt.Errorf("derive variations for %s: %w", componentKey, err)
	}
	switch base := d.(type) {
	case catalog.HeroDecisions:
		return toOptions(DeriveHero(base)), nil
	case catalog.NavigationDecisions:
		return toOptions(DeriveNavigation(base)), nil
	case catalog.FooterDecisions:
		return toOptions(DeriveFooter(base)), nil
	}
	return nil, fmt.Errorf("derive variations for %s: %w", componentKey, catalog.ErrUnknownType)
}

func toOptions[D catalog.Decisions](vs []Variation[D]) []Option {
	out := make([]Option, len(vs))
	for i, v := range vs {
		out[i] = Option{
			Decisions:   v.Decisions.AsMap(),
			Label:       v.Label,
			Description: v.Description,
			Recommended: i == 0,
		}
	}
	return out
}

// flipAlignment moves centered content to the left and everything else to the center.
func flipAlignment(a string) string {
	if a == "center" {
		return "left"
	}
	return "center"
}
