package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.1:8b-instruct"
)

// OllamaClient talks to a local or self-hosted Ollama server through its chat endpoint.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllama(baseURL, model string) (*OllamaClient, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	// no client timeout: streams stay open as long as the model generates
	return &OllamaClient{
		client: api.NewClient(u, &http.Client{Timeout: 0}),
		model:  model,
	}, nil
}

func (c *OllamaClient) Complete(ctx context.Context, req Request) (string, error) {
	return c.chat(ctx, req, false, nil)
}

func (c *OllamaClient) Stream(ctx context.Context, req Request, onToken TokenFunc) (string, error) {
	return c.chat(ctx, req, true, onToken)
}

func (c *OllamaClient) chat(ctx context.Context, req Request, stream bool, onToken TokenFunc) (string, error) {
	msgs := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, api.Message{Role: RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": req.Temperature},
	}
	if req.JSON {
		chatReq.Format = json.RawMessage(`"json"`)
	}

	var full strings.Builder
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		full.WriteString(resp.Message.Content)
		if onToken != nil {
			onToken(resp.Message.Content)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if full.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return full.String(), nil
}
