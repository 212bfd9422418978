// Package content drafts copy for a project's resolved components, limited to
// the fields each component's decisions make active.
package content

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/llm"
	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
)

//go:embed SKILL.md
var instructions string

const temperature = 0.7

// structural flow entries that never become navigation targets
var excludedTargets = []string{"Navigation", "Footer", "Header"}

// Store is the persistence the skill needs.
type Store interface {
	ListComponents(ctx context.Context, projectID string) ([]domain.ProjectComponent, error)
	SaveContent(ctx context.Context, projectID string, content map[string]map[string]any, hints *domain.StyleHints) error
}

type Skill struct {
	llm   llm.Client
	store Store
	log   *zap.Logger
}

func New(client llm.Client, store Store, log *zap.Logger) *Skill {
	if log == nil {
		log = zap.NewNop()
	}
	return &Skill{llm: client, store: store, log: log}
}

// Run generates and persists content for every component of project. disc is
// the intent spec to draw context from; when nil the project's stored one is
// used. A nil Output with nil error means the project has no components yet.
func (s *Skill) Run(ctx context.Context, project *domain.Project, disc *discovery.Output) (*Output, error) {
	comps, err := s.store.ListComponents(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	if len(comps) == 0 {
		s.log.Info("no components to write content for", zap.String("project_id", project.ID))
		return nil, nil
	}
	if disc == nil {
		disc = project.IntentSpec
	}

	reqs := requirementsFor(comps)
	prompt, err := buildPrompt(project, disc, reqs)
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.Complete(ctx, llm.Request{
		System:      instructions,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		JSON:        true,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("content llm call: %w", err)
	}

	var out Output
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}
	stripped, err := sanitize(&out, reqs)
	if err != nil {
		s.log.Error("content output rejected", zap.String("project_id", project.ID), zap.Error(err))
		return nil, err
	}
	if len(stripped) > 0 {
		s.log.Warn("dropped inactive content fields",
			zap.String("project_id", project.ID),
			zap.Strings("fields", stripped))
	}

	byKey := make(map[string]map[string]any, len(out.Components))
	for _, cc := range out.Components {
		byKey[cc.ComponentKey] = cc.Content
	}
	if err := s.store.SaveContent(ctx, project.ID, byKey, out.Global); err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}

	s.log.Info("content generated",
		zap.String("project_id", project.ID),
		zap.Int("components", len(out.Components)))
	return &out, nil
}

// LinkTargets returns the flow entries navigation may link to.
func LinkTargets(disc *discovery.Output) []string {
	if disc == nil {
		return []string{}
	}
	out := make([]string, 0, len(disc.Layout.Flow))
	for _, name := range disc.Layout.Flow {
		if !slices.Contains(excludedTargets, name) {
			out = append(out, name)
		}
	}
	return out
}

func buildPrompt(project *domain.Project, disc *discovery.Output, reqs []Requirement) (string, error) {
	reqJSON, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal requirements: %w", err)
	}
	targets, err := json.Marshal(LinkTargets(disc))
	if err != nil {
		return "", fmt.Errorf("marshal link targets: %w", err)
	}

	name := "Untitled Project"
	if project.Name != nil && *project.Name != "" {
		name = *project.Name
	}
	audience, voice, persona := "General", "Professional", "None"
	if disc != nil {
		audience = orDefault(disc.Audience, audience)
		voice = orDefault(discovery.Str(disc.Voice), voice)
		persona = orDefault(discovery.Str(disc.Persona), persona)
	}

	var b strings.Builder
	b.WriteString("YOU ARE DRAFTING CONTENT FOR THE FOLLOWING COMPONENTS:\n")
	b.Write(reqJSON)
	b.WriteString("\n\nPROJECT CONTEXT:\n")
	fmt.Fprintf(&b, "- Name: %s\n", name)
	fmt.Fprintf(&b, "- Goals: %s\n", project.Prompt)
	fmt.Fprintf(&b, "- Audience: %s\n", audience)
	fmt.Fprintf(&b, "- Voice: %s\n", voice)
	fmt.Fprintf(&b, "- Persona: %s\n", persona)
	fmt.Fprintf(&b, "- Valid Navigation Targets: %s\n", targets)
	b.WriteString(`
INSTRUCTIONS:
- Write content ONLY for the listed "activeFields"
- Do NOT introduce new fields
- Return JSON with version "content_v1"
- For navigation "primaryLinks", ONLY link to the Valid Navigation Targets listed above.
`)
	return b.String(), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
