package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/config"
	"github.com/drafte-app/drafte-backend/internal/llm"
)

// NewLLM builds the configured provider client behind the rate limiter.
func NewLLM(ctx context.Context, cfg *config.LLMConfig, log *zap.Logger) (llm.Client, error) {
	var (
		client llm.Client
		err    error
	)
	switch cfg.Provider {
	case "gemini":
		client, err = llm.NewGemini(ctx, cfg.GeminiKey, cfg.Model)
	case "ollama", "":
		client, err = llm.NewOllama(cfg.OllamaURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	log.Info("llm client ready", zap.String("provider", cfg.Provider), zap.String("model", cfg.Model), zap.Float64("rps", cfg.RPS))
	return llm.WithRateLimit(client, cfg.RPS, cfg.Burst), nil
}
