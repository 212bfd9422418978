// Package router classifies an incoming chat message into the skill that should handle it.
package router

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/llm"
)

type Skill string

const (
	SkillNone      Skill = ""
	SkillChat      Skill = "chat"
	SkillDiscovery Skill = "discovery"
	SkillContent   Skill = "content"
)

func (s Skill) Valid() bool {
	return s == SkillChat || s == SkillDiscovery || s == SkillContent
}

const prompt = `You are an intent router for a website builder.

Classify the user's message into ONE of the following:

- "discovery" : the user wants to build, create, design, or plan a website
- "content"   : the user wants copy written or rewritten for an already planned site
- "chat"      : greetings, vague questions, help, or follow-ups

Previously selected skill: %s

Respond with ONLY one word: "chat", "discovery" or "content".

User message:
%q`

type Router struct {
	llm llm.Client
	log *zap.Logger
}

func New(client llm.Client, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{llm: client, log: log}
}

// Route never fails: any provider error or unrecognized answer yields SkillChat.
// content is redirected to discovery while the project has no discovery output.
func (r *Router) Route(ctx context.Context, input string, prior Skill, hasDiscovery bool) Skill {
	priorLabel := string(prior)
	if priorLabel == "" {
		priorLabel = "none"
	}

	req := llm.Prompt("", fmt.Sprintf(prompt, priorLabel, input))
	req.Temperature = 0

	raw, err := r.llm.Complete(ctx, req)
	if err != nil {
		r.log.Warn("router llm call failed, defaulting to chat", zap.Error(err))
		return SkillChat
	}

	skill := Parse(raw)
	if skill == SkillContent && !hasDiscovery {
		skill = SkillDiscovery
	}
	r.log.Debug("router selected skill", zap.String("skill", string(skill)), zap.String("raw", raw))
	return skill
}

// Parse normalizes a model answer to a Skill. Anything unrecognized is chat.
func Parse(raw string) Skill {
	word := strings.ToLower(strings.TrimSpace(raw))
	word = strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	if s := Skill(word); s.Valid() {
		return s
	}
	return SkillChat
}
