// Package llm is the boundary to language-model providers. Every call through
// it is treated as fallible and its output as untrusted.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	System      string
	Messages    []Message
	JSON        bool
	Temperature float32
}

// TokenFunc receives streamed output fragments in order.
type TokenFunc func(token string)

type Client interface {
	// Complete returns the full response text.
	Complete(ctx context.Context, req Request) (string, error)
	// Stream forwards fragments to onToken as they arrive and returns the full text.
	Stream(ctx context.Context, req Request, onToken TokenFunc) (string, error)
}

var ErrEmptyResponse = errors.New("llm returned an empty response")

// Prompt builds a single-turn request.
func Prompt(system, user string) Request {
	return Request{System: system, Messages: []Message{{Role: RoleUser, Content: user}}}
}
