package workflow

import (
	"github.com/drafte-app/drafte-backend/internal/llm"
	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
	"github.com/drafte-app/drafte-backend/internal/skills/router"
)

// State travels through the graph for one chat turn.
type State struct {
	ProjectID string
	UserID    string
	Input     string

	Project       *domain.Project
	History       []llm.Message
	PriorSkill    router.Skill
	SelectedSkill router.Skill
	Discovery     *discovery.Output
	Status        domain.Status
	Reply         string
}

// priorSkill infers the skill that last moved the project forward from its status.
func priorSkill(p *domain.Project) router.Skill {
	switch p.Status {
	case domain.StatusDiscovered, domain.StatusContentGenerating:
		return router.SkillDiscovery
	case domain.StatusContentGenerated:
		return router.SkillContent
	}
	return router.SkillNone
}

func toLLM(msgs []domain.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// repeatsLast reports whether input was already persisted as the latest user turn.
func repeatsLast(history []domain.ChatMessage, input string) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	return last.Role == domain.RoleUser && last.Content == input
}
