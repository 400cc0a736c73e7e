package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-flash-latest"

// GeminiGenerator calls Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := checkPrompt(ProviderGemini, prompt); err != nil {
		return "", err
	}

	resp, err := g.client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", &GenerationError{Provider: ProviderGemini, Reason: ReasonRefused, Err: err}
		}

		statusCode := 0
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			statusCode = apiErr.Code
		}

		return "", requestError(ProviderGemini, statusCode, fmt.Errorf("generate content: %w", err))
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", &GenerationError{
			Provider: ProviderGemini,
			Reason:   ReasonRefused,
			Err:      fmt.Errorf("prompt is blocked (reason = %s)", resp.PromptFeedback.BlockReason),
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &GenerationError{
			Provider: ProviderGemini,
			Reason:   ReasonEmptyOutput,
			Err:      errors.New("response has no candidates"),
		}
	}

	candidate := resp.Candidates[0]

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(b.String())
	if text != "" {
		return text, nil
	}

	reason := ReasonEmptyOutput
	if candidate.FinishReason == genai.FinishReasonSafety ||
		candidate.FinishReason == genai.FinishReasonRecitation {
		reason = ReasonRefused
	}

	return "", &GenerationError{
		Provider: ProviderGemini,
		Reason:   reason,
		Err:      fmt.Errorf("output text is missing (finishReason = %s)", candidate.FinishReason),
	}
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
