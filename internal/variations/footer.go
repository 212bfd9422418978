package variations

import "github.com/drafte-app/drafte-backend/internal/catalog"

// DeriveFooter offers a single alignment alternative.
func DeriveFooter(base catalog.FooterDecisions) []Variation[catalog.FooterDecisions] {
	out := make([]Variation[catalog.FooterDecisions], 0, MaxFooter)
	out = append(out, Variation[catalog.FooterDecisions]{Decisions: base, Label: RecommendedLabel})

	aligned := base
	aligned.Alignment = flipAlignment(base.Alignment)
	if aligned.Alignment == "center" {
		out = append(out, Variation[catalog.FooterDecisions]{aligned, "Centered Footer", "Centered footer content"})
	} else {
		out = append(out, Variation[catalog.FooterDecisions]{aligned, "Left-Aligned Footer", "Left-aligned footer content"})
	}
	return out
}
