package discovery

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/drafte-app/drafte-backend/internal/catalog"
)

// NormalizeFlow rewrites flow entries that name a component type instead of a
// component, e.g. "hero" for a component called "Hero Banner". An entry is only
// rewritten when exactly one component of that type exists. out is not modified.
func NormalizeFlow(out *Output) *Output {
	names := make(map[string]bool, len(out.Components))
	byType := make(map[string][]string)
	for _, c := range out.Components {
		names[c.Name] = true
		t := strings.ToLower(string(c.Type))
		byType[t] = append(byType[t], c.Name)
	}

	cp := *out
	cp.Layout.Flow = make([]string, len(out.Layout.Flow))
	for i, entry := range out.Layout.Flow {
		cp.Layout.Flow[i] = entry
		if names[entry] {
			continue
		}
		if same := byType[strings.ToLower(strings.TrimSpace(entry))]; len(same) == 1 {
			cp.Layout.Flow[i] = same[0]
		}
	}
	cp.Components = slices.Clone(out.Components)
	return &cp
}

// Validate applies the rules the structural schema cannot express. It returns
// the first violation found.
func Validate(out *Output) error {
	if out.Version != Version {
		return fmt.Errorf("invalid version %q: only %s is supported", out.Version, Version)
	}
	if n := len(out.Components); n != len(catalog.RequiredTypes) {
		return fmt.Errorf("exactly %d components required (navigation, hero, footer), found %d", len(catalog.RequiredTypes), n)
	}

	counts := make(map[catalog.ComponentType]int)
	for _, c := range out.Components {
		if !catalog.IsKnownType(string(c.Type)) {
			return fmt.Errorf("invalid component type %q: only navigation, hero and footer are allowed", c.Type)
		}
		if c.Proposal == nil {
			return fmt.Errorf("%s component %q must include a proposal", c.Type, c.Name)
		}
		if c.Proposal.ComponentType() != c.Type {
			return fmt.Errorf("%s component %q carries a %s proposal", c.Type, c.Name, c.Proposal.ComponentType())
		}
		if _, err := catalog.ParseDecisions(c.Type, c.Proposal.AsMap()); err != nil {
			return fmt.Errorf("invalid %s proposal for %q: %w", c.Type, c.Name, err)
		}
		counts[c.Type]++
	}
	for _, t := range catalog.RequiredTypes {
		if counts[t] != 1 {
			return fmt.Errorf("exactly one %s component is required, found %d", t, counts[t])
		}
	}

	if out.Layout.Type != SinglePage {
		return errors.New("only single-page layouts are allowed")
	}

	names := make(map[string]bool, len(out.Components))
	for _, c := range out.Components {
		if names[c.Name] {
			return fmt.Errorf("duplicate component name %q", c.Name)
		}
		names[c.Name] = true
	}

	seen := make(map[string]int, len(out.Layout.Flow))
	for _, entry := range out.Layout.Flow {
		if !names[entry] {
			return fmt.Errorf("layout flow references missing component %q, available names: %s", entry, strings.Join(componentNames(out), ", "))
		}
		seen[entry]++
	}
	for _, c := range out.Components {
		switch seen[c.Name] {
		case 0:
			return fmt.Errorf("component not present in layout flow: %q", c.Name)
		case 1:
		default:
			return fmt.Errorf("component %q appears %d times in layout flow", c.Name, seen[c.Name])
		}
	}
	return nil
}

func componentNames(out *Output) []string {
	names := make([]string, len(out.Components))
	for i, c := range out.Components {
		names[i] = c.Name
	}
	return names
}
