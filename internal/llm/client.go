package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fmuoria/resume-reviser/internal/config"
)

// Client is an abstraction over the model providers
type Client interface {
	// GenerateJSON sends prompt and returns the model's JSON text,
	// constrained to schema when the provider supports it
	GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// Options are the generation settings shared by all providers
type Options struct {
	Model       string
	Temperature float32
}

// NewClient creates a client for the configured provider
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	opts := Options{Model: cfg.Model, Temperature: cfg.Temperature}

	switch cfg.Provider {
	case config.ProviderVertex:
		client, err := NewVertexAIClient(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation, cfg.GoogleCredentialsPath, opts)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderGemini, "":
		client, err := NewGeminiClient(ctx, cfg.APIKey, opts)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Usage is the token accounting reported with a response
type Usage struct {
	PromptTokens    int32
	CandidateTokens int32
	TotalTokens     int32
}

func logUsage(provider, model string, usage *Usage) {
	if usage == nil {
		slog.Info("model response received", "provider", provider, "model", model)
		return
	}
	slog.Info("model response received",
		"provider", provider,
		"model", model,
		"prompt_tokens", usage.PromptTokens,
		"candidate_tokens", usage.CandidateTokens,
		"total_tokens", usage.TotalTokens,
	)
}

// CleanJSONBlock removes markdown code block wrappers from JSON
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
