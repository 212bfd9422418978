// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/drafte-app/drafte-backend/internal/llm"
)

var ErrScriptExhausted = errors.New("llmtest: no scripted response left")

// Reply is one scripted answer. A non-nil Err is returned instead of Text.
type Reply struct {
	Text string
	Err  error
}

// Scripted answers calls in order from its queue and records every request.
// Match lets a test route by system prompt instead of call order.
type Scripted struct {
	mu       sync.Mutex
	queue    []Reply
	Match    func(req llm.Request) (Reply, bool)
	Requests []llm.Request
}

func New(replies ...Reply) *Scripted {
	return &Scripted{queue: replies}
}

// Texts is shorthand for a script of successful replies.
func Texts(texts ...string) *Scripted {
	replies := make([]Reply, len(texts))
	for i, t := range texts {
		replies[i] = Reply{Text: t}
	}
	return New(replies...)
}

func (s *Scripted) Push(r ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, r...)
}

func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

func (s *Scripted) next(ctx context.Context, req llm.Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	if s.Match != nil {
		if r, ok := s.Match(req); ok {
			return r, nil
		}
	}
	if len(s.queue) == 0 {
		return Reply{}, ErrScriptExhausted
	}
	r := s.queue[0]
	s.queue = s.queue[1:]
	return r, nil
}

func (s *Scripted) Complete(ctx context.Context, req llm.Request) (string, error) {
	r, err := s.next(ctx, req)
	if err != nil {
		return "", err
	}
	return r.Text, r.Err
}

// Stream emits the scripted text word by word.
func (s *Scripted) Stream(ctx context.Context, req llm.Request, onToken llm.TokenFunc) (string, error) {
	r, err := s.next(ctx, req)
	if err != nil {
		return "", err
	}
	if r.Err != nil {
		return "", r.Err
	}
	if onToken != nil {
		for _, tok := range strings.SplitAfter(r.Text, " ") {
			if tok != "" {
				onToken(tok)
			}
		}
	}
	return r.Text, nil
}
