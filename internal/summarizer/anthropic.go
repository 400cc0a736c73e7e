package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel           = "claude-haiku-4-5"
	anthropicMaxTokens        int64 = 1024
	anthropicRefusalStopReason      = "refusal"
)

// AnthropicGenerator calls Anthropic's Messages API.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

func NewAnthropicGenerator(cfg Config) *AnthropicGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicGenerator{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := checkPrompt(ProviderAnthropic, prompt); err != nil {
		return "", err
	}

	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		statusCode := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			statusCode = apiErr.StatusCode
		}

		return "", requestError(ProviderAnthropic, statusCode, fmt.Errorf("do request: %w", err))
	}

	if string(resp.StopReason) == anthropicRefusalStopReason {
		return "", &GenerationError{
			Provider: ProviderAnthropic,
			Reason:   ReasonRefused,
			Err:      errors.New("model refused the request"),
		}
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", &GenerationError{
			Provider: ProviderAnthropic,
			Reason:   ReasonEmptyOutput,
			Err:      fmt.Errorf("output text is missing (stopReason = %s)", resp.StopReason),
		}
	}

	return text, nil
}
