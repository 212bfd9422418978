// Package discovery turns a free-text request into a validated intent spec:
// theme, audience, voice and one proposal each for navigation, hero and footer.
package discovery

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/llm"
)

//go:embed SKILL.md
var instructions string

const MaxAttempts = 3

// StatusDiscovered is the project status a successful discovery moves to.
const StatusDiscovered = "DISCOVERED"

var ErrDiscoveryFailed = errors.New("discovery failed")

type Result struct {
	Output *Output
	Status string
}

type Skill struct {
	llm llm.Client
	log *zap.Logger
}

func New(client llm.Client, log *zap.Logger) *Skill {
	if log == nil {
		log = zap.NewNop()
	}
	return &Skill{llm: client, log: log}
}

// Run asks the model for an intent spec, retrying with corrective feedback up to
// MaxAttempts times. It never returns partial output: either a fully validated
// Output or an error wrapping ErrDiscoveryFailed.
func (s *Skill) Run(ctx context.Context, history []llm.Message, input string) (*Result, error) {
	base := make([]llm.Message, 0, len(history)+1)
	base = append(base, history...)
	base = append(base, llm.Message{Role: llm.RoleUser, Content: input})

	out, err := llm.Retry(ctx, MaxAttempts, func(ctx context.Context, attempt int, prior []error) (*Output, error) {
		msgs := base
		if attempt > 0 {
			msgs = append(slices.Clone(base), llm.Message{
				Role:    llm.RoleUser,
				Content: correction(attempt, prior[len(prior)-1]),
			})
		}
		raw, err := s.llm.Complete(ctx, llm.Request{
			System:      instructions,
			Messages:    msgs,
			JSON:        true,
			Temperature: 0,
		})
		if err != nil {
			return nil, err
		}
		out, err := Parse(raw)
		if err != nil {
			s.log.Warn("discovery attempt rejected",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", MaxAttempts),
				zap.Error(err))
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.log.Error("discovery failed", zap.Int("attempts", MaxAttempts), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
	}

	for i := range out.Components {
		out.Components[i].Required = true
	}
	s.log.Info("discovery completed",
		zap.String("intent", out.Intent),
		zap.Strings("flow", out.Layout.Flow))
	return &Result{Output: out, Status: StatusDiscovered}, nil
}

// Parse decodes, normalizes and validates one raw model response.
func Parse(raw string) (*Output, error) {
	out, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	out = NormalizeFlow(out)
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func correction(attempt int, cause error) string {
	return fmt.Sprintf(`Attempt %d of %d. Your previous JSON response was incomplete or invalid.
Error: %v

You MUST return a COMPLETE JSON object with ALL of these fields:
- version: "discovery_v2"
- intent: "marketing" | "portfolio" | "product"
- theme: string
- audience: string
- voice: one of the listed voice values, or null
- persona: string or null
- layout: { "type": "single-page", "flow": [the three component names, each exactly once] }
- components: exactly 3 components, one navigation, one hero, one footer

Each component MUST include type, name, purpose, required (true), proposal (every
decision field for its type), reasoning (string or null) and intentHint (string or null).
Hero components also include contentGoal and ctaIntent (value or null).

Return ONLY valid JSON, no markdown, no explanations.`, attempt+1, MaxAttempts, cause)
}
