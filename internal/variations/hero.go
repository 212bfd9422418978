package variations

import "github.com/drafte-app/drafte-backend/internal/catalog"

// DeriveHero toggles layout, then alignment, then downgrades the CTA. A CTA is
// never upgraded: the UI should not suggest actions the user did not ask for.
func DeriveHero(base catalog.HeroDecisions) []Variation[catalog.HeroDecisions] {
	out := make([]Variation[catalog.HeroDecisions], 0, MaxHero)
	out = append(out, Variation[catalog.HeroDecisions]{
		Decisions:   base,
		Label:       RecommendedLabel,
		Description: "AI-recommended hero configuration",
	})

	layout := base
	if base.Layout == "split" {
		layout.Layout = "text-only"
		out = append(out, Variation[catalog.HeroDecisions]{layout, "Text-Only Layout", "Minimal, typography-focused hero"})
	} else {
		layout.Layout = "split"
		out = append(out, Variation[catalog.HeroDecisions]{layout, "Split Layout", "Text and image presented side-by-side"})
	}
	if len(out) >= MaxHero {
		return out
	}

	aligned := base
	aligned.Alignment = flipAlignment(base.Alignment)
	if aligned.Alignment == "center" {
		out = append(out, Variation[catalog.HeroDecisions]{aligned, "Centered Content", "Balanced, centered hero layout"})
	} else {
		out = append(out, Variation[catalog.HeroDecisions]{aligned, "Left-Aligned Content", "Editorial, left-aligned presentation"})
	}
	if len(out) >= MaxHero {
		return out
	}

	switch base.CTA {
	case "dual":
		cta := base
		cta.CTA = "single"
		out = append(out, Variation[catalog.HeroDecisions]{cta, "Single Call-to-Action", "Focused hero with one primary action"})
	case "single":
		cta := base
		cta.CTA = "none"
		out = append(out, Variation[catalog.HeroDecisions]{cta, "No Call-to-Action", "Purely informational hero"})
	}
	return out
}
