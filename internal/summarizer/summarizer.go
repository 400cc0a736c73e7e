package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Generator sends a prompt to a text-generation provider and returns the raw
// response text. Failures match domain.ErrGenerationFailed.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config is resolved once at startup and injected into the generator.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint. Gemini ignores it.
	BaseURL string
	// HTTPClient overrides the transport used by the provider SDK.
	HTTPClient *http.Client
}

// New builds the generator for cfg.Provider. A missing API key is not a
// construction error: the returned generator fails every call before any
// network traffic happens.
func New(ctx context.Context, cfg Config) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)

	switch provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if cfg.APIKey == "" {
		return unconfigured{provider: provider}, nil
	}

	switch provider {
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicGenerator(cfg), nil
	default:
		return NewGeminiGenerator(ctx, cfg)
	}
}

type unconfigured struct {
	provider string
}

func (u unconfigured) Generate(context.Context, string) (string, error) {
	return "", &GenerationError{
		Provider: u.provider,
		Reason:   ReasonMissingCredentials,
		Err:      errors.New("api key is not configured"),
	}
}

func checkPrompt(provider string, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return &GenerationError{
			Provider: provider,
			Reason:   ReasonEmptyPrompt,
			Err:      errors.New("prompt is empty"),
		}
	}

	return nil
}
