package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drafte-app/drafte-backend/internal/catalog"
	"github.com/drafte-app/drafte-backend/internal/llm"
	"github.com/drafte-app/drafte-backend/internal/llm/llmtest"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery/discoverytest"
)

func TestParse_Valid(t *testing.T) {
	out, err := Parse(discoverytest.PhotographerJSON)
	require.NoError(t, err)

	assert.Equal(t, "portfolio", out.Intent)
	assert.Equal(t, "warm-personal", Str(out.Voice))
	require.Len(t, out.Components, 3)

	hero, ok := out.Components[1].Proposal.(catalog.HeroDecisions)
	require.True(t, ok, "hero proposal decodes to HeroDecisions")
	assert.Equal(t, "split", hero.Layout)
	assert.Equal(t, "view-work", Str(out.Components[1].CtaIntent))

	footer, ok := out.Components[2].Proposal.(catalog.FooterDecisions)
	require.True(t, ok)
	assert.True(t, footer.ShowCopyright)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(doc map[string]any)
		wantErr string
	}{
		{
			name: "diagonal hero layout",
			mutate: func(doc map[string]any) {
				discoverytest.Component(doc, "hero")["proposal"].(map[string]any)["layout"] = "diagonal"
			},
			wantErr: `invalid hero layout: "diagonal"`,
		},
		{
			name: "null proposal",
			mutate: func(doc map[string]any) {
				discoverytest.Component(doc, "navigation")["proposal"] = nil
			},
			wantErr: "must include a proposal",
		},
		{
			name: "two heroes",
			mutate: func(doc map[string]any) {
				nav := discoverytest.Component(doc, "navigation")
				nav["type"] = "hero"
				nav["proposal"] = map[string]any{"alignment": "left", "layout": "split", "density": "compact", "cta": "none", "background": "solid"}
			},
			wantErr: "exactly one navigation component is required",
		},
		{
			name: "four components",
			mutate: func(doc map[string]any) {
				comps := discoverytest.Components(doc)
				doc["components"] = append(comps, comps[2])
			},
			wantErr: "exactly 3 components required",
		},
		{
			name: "unknown component type",
			mutate: func(doc map[string]any) {
				discoverytest.Component(doc, "footer")["type"] = "sidebar"
			},
			wantErr: `unknown type "sidebar"`,
		},
		{
			name: "dangling flow entry",
			mutate: func(doc map[string]any) {
				doc["layout"].(map[string]any)["flow"] = []any{"Navigation", "Hero", "Gallery"}
			},
			wantErr: `layout flow references missing component "Gallery"`,
		},
		{
			name: "component missing from flow",
			mutate: func(doc map[string]any) {
				doc["layout"].(map[string]any)["flow"] = []any{"Navigation", "Hero"}
			},
			wantErr: `component not present in layout flow: "Footer"`,
		},
		{
			name: "duplicate flow entry",
			mutate: func(doc map[string]any) {
				doc["layout"].(map[string]any)["flow"] = []any{"Navigation", "Hero", "Hero", "Footer"}
			},
			wantErr: `"Hero" appears 2 times`,
		},
		{
			name: "multi page layout",
			mutate: func(doc map[string]any) {
				doc["layout"].(map[string]any)["type"] = "multi-page"
			},
			wantErr: "layout.type",
		},
		{
			name: "wrong version",
			mutate: func(doc map[string]any) {
				doc["version"] = "discovery_v1"
			},
			wantErr: "version",
		},
		{
			name: "missing theme",
			mutate: func(doc map[string]any) {
				delete(doc, "theme")
			},
			wantErr: "Missing fields: theme",
		},
		{
			name: "unknown voice",
			mutate: func(doc map[string]any) {
				doc["voice"] = "pirate"
			},
			wantErr: "voice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(discoverytest.Mutate(tt.mutate))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Parse("this is not json")
	assert.ErrorIs(t, err, llm.ErrNoJSON)
}

func TestNormalizeFlow(t *testing.T) {
	raw := discoverytest.Mutate(func(doc map[string]any) {
		discoverytest.Component(doc, "hero")["name"] = "Hero Banner"
		doc["layout"].(map[string]any)["flow"] = []any{"navigation", "HERO", "Footer"}
	})
	in, err := Decode(raw)
	require.NoError(t, err)

	out := NormalizeFlow(in)
	assert.Equal(t, []string{"Navigation", "Hero Banner", "Footer"}, out.Layout.Flow)
	assert.Equal(t, []string{"navigation", "HERO", "Footer"}, in.Layout.Flow, "input is not modified")
	require.NoError(t, Validate(out))
}

func TestValidate_FlowIsBijection(t *testing.T) {
	out, err := Parse(discoverytest.PhotographerJSON)
	require.NoError(t, err)

	flow := map[string]int{}
	for _, f := range out.Layout.Flow {
		flow[f]++
	}
	assert.Len(t, out.Layout.Flow, len(out.Components))
	for _, c := range out.Components {
		assert.Equal(t, 1, flow[c.Name])
	}
}

func TestRun_SucceedsFirstTry(t *testing.T) {
	fake := llmtest.Texts(discoverytest.PhotographerJSON)
	history := []llm.Message{{Role: llm.RoleUser, Content: "hi"}, {Role: llm.RoleAssistant, Content: "hello!"}}

	res, err := New(fake, nil).Run(context.Background(), history, "Build me a portfolio site for a photographer")
	require.NoError(t, err)
	assert.Equal(t, StatusDiscovered, res.Status)
	for _, c := range res.Output.Components {
		assert.True(t, c.Required, "%s forced to required", c.Name)
	}

	require.Len(t, fake.Requests, 1)
	req := fake.Requests[0]
	assert.True(t, req.JSON)
	assert.Equal(t, instructions, req.System)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "Build me a portfolio site for a photographer", req.Messages[2].Content)
}

func TestRun_RetriesWithDistinctCorrections(t *testing.T) {
	fake := llmtest.Texts(
		"not json at all",
		discoverytest.Mutate(func(doc map[string]any) { doc["layout"].(map[string]any)["type"] = "multi-page" }),
		discoverytest.PhotographerJSON,
	)

	res, err := New(fake, nil).Run(context.Background(), nil, "portfolio please")
	require.NoError(t, err)
	require.NotNil(t, res.Output)
	require.Len(t, fake.Requests, 3)

	assert.Len(t, fake.Requests[0].Messages, 1)
	second := fake.Requests[1].Messages
	third := fake.Requests[2].Messages
	require.Len(t, second, 2)
	require.Len(t, third, 2)
	assert.Contains(t, second[1].Content, "Attempt 2 of 3")
	assert.Contains(t, third[1].Content, "Attempt 3 of 3")
	assert.Contains(t, third[1].Content, "layout.type")
	assert.NotEqual(t, second[1].Content, third[1].Content)
}

func TestRun_FailsAfterMaxAttempts(t *testing.T) {
	bad := discoverytest.Mutate(func(doc map[string]any) {
		discoverytest.Component(doc, "hero")["proposal"].(map[string]any)["layout"] = "diagonal"
	})
	fake := llmtest.Texts(bad, bad, bad, discoverytest.PhotographerJSON)

	res, err := New(fake, nil).Run(context.Background(), nil, "site")
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrDiscoveryFailed)

	var ex *llm.ExhaustedError
	require.True(t, errors.As(err, &ex))
	assert.Equal(t, MaxAttempts, ex.Attempts)
	assert.Equal(t, MaxAttempts, fake.Calls(), "never calls beyond the bound")

	prompts := map[string]bool{}
	for _, r := range fake.Requests[1:] {
		prompts[r.Messages[len(r.Messages)-1].Content] = true
	}
	assert.Len(t, prompts, MaxAttempts-1, "each corrective prompt differs")
}

func TestRun_ProviderErrorsCountAsAttempts(t *testing.T) {
	fake := llmtest.New(
		llmtest.Reply{Err: errors.New("connection reset")},
		llmtest.Reply{Text: discoverytest.PhotographerJSON},
	)
	res, err := New(fake, nil).Run(context.Background(), nil, "site")
	require.NoError(t, err)
	assert.NotNil(t, res.Output)
	assert.Equal(t, 2, fake.Calls())
}
