package variations

import "github.com/drafte-app/drafte-backend/internal/catalog"

// DeriveNavigation toggles alignment, then background.
func DeriveNavigation(base catalog.NavigationDecisions) []Variation[catalog.NavigationDecisions] {
	out := make([]Variation[catalog.NavigationDecisions], 0, MaxNavigation)
	out = append(out, Variation[catalog.NavigationDecisions]{Decisions: base, Label: RecommendedLabel})

	aligned := base
	aligned.Alignment = flipAlignment(base.Alignment)
	if aligned.Alignment == "center" {
		out = append(out, Variation[catalog.NavigationDecisions]{aligned, "Centered Navigation", "Balanced, centered navigation layout"})
	} else {
		out = append(out, Variation[catalog.NavigationDecisions]{aligned, "Left-Aligned Navigation", "Traditional, left-aligned navigation"})
	}
	if len(out) >= MaxNavigation {
		return out
	}

	bg := base
	if base.Background == "solid" {
		bg.Background = "transparent"
		out = append(out, Variation[catalog.NavigationDecisions]{bg, "Transparent Background", "Modern, transparent navigation"})
	} else {
		bg.Background = "solid"
		out = append(out, Variation[catalog.NavigationDecisions]{bg, "Solid Background", "Clear navigation with solid background"})
	}
	return out
}
