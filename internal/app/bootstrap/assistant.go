package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/clinic-assistant/internal/assistant"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/transcription"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// BuildLLMClient wires the primary model provider and, when configured, a
// fallback provider. It returns nil when no provider is usable; the oracle then
// answers questions with ErrNotConfigured.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (assistant.LLMClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	primary, err := buildProvider(ctx, cfg.LLMProvider, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		logger.Warn("no LLM provider configured; questions get a fallback notice", "provider", cfg.LLMProvider)
		return nil, nil
	}
	logger.Info("LLM provider enabled", "provider", cfg.LLMProvider)

	fallbackName := strings.TrimSpace(cfg.LLMFallbackProvider)
	if fallbackName == "" || fallbackName == cfg.LLMProvider {
		return primary, nil
	}
	fallback, err := buildProvider(ctx, fallbackName, cfg, awsCfg)
	if err != nil {
		logger.Warn("failed to build fallback LLM provider", "provider", fallbackName, "error", err)
		return primary, nil
	}
	if fallback == nil {
		logger.Warn("fallback LLM provider not configured", "provider", fallbackName)
		return primary, nil
	}
	logger.Info("LLM fallback enabled", "provider", fallbackName)
	return assistant.NewFallbackClient(primary, fallback, logger), nil
}

func buildProvider(ctx context.Context, name string, cfg *appconfig.Config, awsCfg *aws.Config) (assistant.LLMClient, error) {
	switch name {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, nil
		}
		client, err := assistant.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini: %w", err)
		}
		return client, nil
	case "bedrock":
		if strings.TrimSpace(cfg.BedrockModelID) == "" || awsCfg == nil {
			return nil, nil
		}
		return assistant.NewBedrockClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown llm provider %q", name)
	}
}

// BuildTranscriber returns the Groq voice transcriber, or nil without an API key.
func BuildTranscriber(cfg *appconfig.Config, logger *logging.Logger) transcription.Transcriber {
	if strings.TrimSpace(cfg.GroqAPIKey) == "" {
		logger.Info("voice transcription disabled; GROQ_API_KEY not set")
		return nil
	}
	client, err := transcription.NewGroqClient(transcription.Config{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
		Timeout: cfg.ExternalCallTimeout,
	})
	if err != nil {
		logger.Error("failed to create groq client", "error", err)
		return nil
	}
	return client
}
