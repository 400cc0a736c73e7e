package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	baseMaxOutputTokens  int64 = 512
	limitMaxOutputTokens int64 = 2048

	defaultOpenAIModel = openai.ChatModelGPT5Mini2025_08_07
)

// OpenAIGenerator calls OpenAI's Responses API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(cfg Config) *OpenAIGenerator {
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
		model = defaultOpenAIModel
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := checkPrompt(ProviderOpenAI, prompt); err != nil {
		return "", err
	}

	maxOutputTokens := baseMaxOutputTokens
	for {
		params := responses.ResponseNewParams{
			Model:           g.model,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(prompt),
			},
		}
		if isReasoningModel(g.model) {
			params.Reasoning = responses.ReasoningParam{
				Effort: openai.ReasoningEffortLow,
			}
		}

		resp, err := g.client.Responses.New(ctx, params)
		if err != nil {
			statusCode := 0
			var apiErr *openai.Error
			if errors.As(err, &apiErr) {
				statusCode = apiErr.StatusCode
			}

			return "", requestError(ProviderOpenAI, statusCode, fmt.Errorf("do request: %w", err))
		}

		if resp.Status == "incomplete" {
			reason := resp.IncompleteDetails.Reason
			if reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}

			genErr := &GenerationError{
				Provider: ProviderOpenAI,
				Reason:   ReasonEmptyOutput,
				Err: fmt.Errorf("response is incomplete (reason = %s, maxOutputTokens = %d)",
					reason, maxOutputTokens),
			}
			if reason == "content_filter" {
				genErr.Reason = ReasonRefused
			}

			return "", genErr
		}

		text := strings.TrimSpace(resp.OutputText())
		if text == "" {
			return "", &GenerationError{
				Provider: ProviderOpenAI,
				Reason:   ReasonEmptyOutput,
				Err:      fmt.Errorf("output text is missing (status = %s)", resp.Status),
			}
		}

		return text, nil
	}
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}

	return false
}
