package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient calls Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	return c.Stream(ctx, req, nil)
}

func (c *GeminiClient) Stream(ctx context.Context, req Request, onToken TokenFunc) (string, error) {
	contents := geminiContents(req.Messages)

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(req.Temperature)}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	var full strings.Builder
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, cfg) {
		if err != nil {
			return "", fmt.Errorf("gemini generate: %w", err)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		full.WriteString(text)
		if onToken != nil {
			onToken(text)
		}
	}
	if full.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return full.String(), nil
}

func geminiContents(msgs []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}
