package decisions

import (
	"testing"

	"github.com/drafte-app/drafte-backend/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heroProposal() catalog.HeroDecisions {
	return catalog.HeroDecisions{Alignment: "left", Layout: "split", Density: "comfortable", CTA: "dual", Background: "solid"}
}

func TestValidator_Validate(t *testing.T) {
	t.Run("valid proposal gets bare type key", func(t *testing.T) {
		v := New()
		res := v.Validate(ComponentInput{Name: "Hero", Type: catalog.TypeHero, Proposal: heroProposal()})
		require.True(t, res.Valid)
		assert.Equal(t, "hero", res.ComponentKey)
		assert.Equal(t, "split", res.Decisions["layout"])
		assert.Empty(t, res.Errors)
	})

	t.Run("repeated type gets numeric suffix", func(t *testing.T) {
		v := New()
		first := v.Validate(ComponentInput{Name: "Hero", Type: catalog.TypeHero, Proposal: heroProposal()})
		second := v.Validate(ComponentInput{Name: "Hero 2", Type: catalog.TypeHero, Proposal: heroProposal()})
		third := v.Validate(ComponentInput{Name: "Hero 3", Type: catalog.TypeHero, Proposal: heroProposal()})
		assert.Equal(t, "hero", first.ComponentKey)
		assert.Equal(t, "hero_1", second.ComponentKey)
		assert.Equal(t, "hero_2", third.ComponentKey)
	})

	t.Run("fresh validators never share counters", func(t *testing.T) {
		a := New()
		a.Validate(ComponentInput{Name: "Hero", Type: catalog.TypeHero, Proposal: heroProposal()})
		b := New()
		res := b.Validate(ComponentInput{Name: "Hero", Type: catalog.TypeHero, Proposal: heroProposal()})
		assert.Equal(t, "hero", res.ComponentKey)
	})

	t.Run("reset clears counters", func(t *testing.T) {
		v := New()
		v.Validate(ComponentInput{Name: "Hero", Type: catalog.TypeHero, Proposal: heroProposal()})
		v.Reset()
		res := v.Validate(ComponentInput{Name: "Hero", Type: catalog.TypeHero, Proposal: heroProposal()})
		assert.Equal(t, "hero", res.ComponentKey)
	})

	t.Run("missing proposal", func(t *testing.T) {
		res := New().Validate(ComponentInput{Name: "Nav", Type: catalog.TypeNavigation})
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "no proposal")
	})

	t.Run("invalid enum value on a typed proposal", func(t *testing.T) {
		p := heroProposal()
		p.Layout = "diagonal"
		res := New().Validate(ComponentInput{Name: "Hero", Type: catalog.TypeHero, Proposal: p})
		assert.False(t, res.Valid)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0], "diagonal")
	})

	t.Run("proposal of another type is rejected", func(t *testing.T) {
		res := New().Validate(ComponentInput{
			Name: "Footer", Type: catalog.TypeFooter,
			Proposal: catalog.NavigationDecisions{Alignment: "left", Density: "compact", Background: "solid"},
		})
		assert.False(t, res.Valid)
	})

	t.Run("unknown type", func(t *testing.T) {
		res := New().Validate(ComponentInput{Name: "Side", Type: "sidebar"})
		assert.False(t, res.Valid)
	})
}

func TestValidator_ValidateMap(t *testing.T) {
	t.Run("hero with diagonal layout is rejected", func(t *testing.T) {
		res := New().ValidateMap("Hero", catalog.TypeHero, map[string]any{
			"alignment": "center", "layout": "diagonal", "density": "compact", "cta": "single", "background": "solid",
		})
		assert.False(t, res.Valid)
		assert.NotEmpty(t, res.Errors)
	})

	t.Run("valid footer map", func(t *testing.T) {
		res := New().ValidateMap("Footer", catalog.TypeFooter, map[string]any{
			"alignment": "center", "layout": "text", "density": "compact", "showCopyright": false,
		})
		require.True(t, res.Valid)
		assert.Equal(t, "footer", res.ComponentKey)
		assert.Equal(t, false, res.Decisions["showCopyright"])
	})

	t.Run("invalid entries still advance the key counter", func(t *testing.T) {
		v := New()
		v.ValidateMap("Footer", catalog.TypeFooter, nil)
		res := v.ValidateMap("Footer", catalog.TypeFooter, map[string]any{
			"alignment": "center", "layout": "text", "density": "compact", "showCopyright": true,
		})
		assert.Equal(t, "footer_1", res.ComponentKey)
	})
}
