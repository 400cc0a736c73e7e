package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"newsbrief/internal/domain"
	"newsbrief/internal/markdown"
)

const (
	telegramMessageMaxLength  = 4096
	summariesMaxParallelism   = 3
	summaryHeader             = "🧾 *Key points*\n\n"
	summaryContinuationHeader = "🧾 *Key points \\(continue\\)*\n\n"
)

type summaryResult struct {
	request domain.SummaryRequest
	points  []string
	err     error
}

func (b *Bot) summarizeAll(ctx context.Context, requests []domain.SummaryRequest) []summaryResult {
	results := make([]summaryResult, len(requests))

	var g errgroup.Group
	g.SetLimit(summariesMaxParallelism)

	for i, req := range requests {
		g.Go(func() error {
			points, err := b.summarizer.Summarize(ctx, req)
			if err != nil {
				b.log.ErrorContext(ctx, "Failed to summarize article",
					"error", err,
					"articleURL", req.URL)
			}

			results[i] = summaryResult{request: req, points: points, err: err}

			return nil
		})
	}

	_ = g.Wait()

	return results
}

func (b *Bot) sendSummaries(ctx context.Context, chatID int64, results []summaryResult) error {
	var errs []error

	for _, message := range formatSummaries(results) {
		if err := b.sendMessage(ctx, chatID, message, nil); err != nil {
			errs = append(errs, fmt.Errorf("send message: %w", err))
		}
	}

	return errors.Join(errs...)
}

// formatSummaries renders results as MarkdownV2 messages that fit the
// Telegram message length limit.
func formatSummaries(results []summaryResult) []string {
	var messages []string
	var currentMessage strings.Builder

	currentMessage.WriteString(summaryHeader)
	headerLength := currentMessage.Len()

	for _, result := range results {
		block := formatSummaryBlock(result)

		if currentMessage.Len() > headerLength &&
			currentMessage.Len()+len(block) > telegramMessageMaxLength {
			messages = append(messages, currentMessage.String())
			currentMessage.Reset()
			currentMessage.WriteString(summaryContinuationHeader)
		}

		currentMessage.WriteString(block)
	}

	if currentMessage.Len() > headerLength {
		messages = append(messages, currentMessage.String())
	}

	return messages
}

func formatSummaryBlock(result summaryResult) string {
	title := strings.TrimSpace(result.request.Title)
	if title == "" {
		title = result.request.URL
	}

	var b strings.Builder

	b.WriteString("📌 *")
	b.WriteString(markdown.Link(title, result.request.URL))
	b.WriteString("*\n\n")

	if result.err != nil {
		b.WriteString("❌ ")
		b.WriteString(markdown.EscapeV2(failureText(result.err)))
		b.WriteString("\n\n")

		return b.String()
	}

	for _, point := range result.points {
		b.WriteString("– ")
		b.WriteString(markdown.EscapeV2(point))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

func failureText(err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationFailed):
		return "Summary is unavailable right now, try again later."
	case errors.Is(err, domain.ErrInvalidRequest):
		return "The link is not valid."
	default:
		return "Failed to read the article."
	}
}
