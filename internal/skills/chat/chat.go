// Package chat answers conversational messages that do not start a build.
package chat

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/drafte-app/drafte-backend/internal/llm"
)

//go:embed SKILL.md
var instructions string

const temperature = 0.7

type Skill struct {
	llm llm.Client
}

func New(client llm.Client) *Skill {
	return &Skill{llm: client}
}

// Reply streams the answer to onToken and returns the full text.
func (s *Skill) Reply(ctx context.Context, history []llm.Message, input string, onToken llm.TokenFunc) (string, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: input})

	text, err := s.llm.Stream(ctx, llm.Request{
		System:      instructions,
		Messages:    msgs,
		Temperature: temperature,
	}, onToken)
	if err != nil {
		return "", fmt.Errorf("chat reply: %w", err)
	}
	return text, nil
}
