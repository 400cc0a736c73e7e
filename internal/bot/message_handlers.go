package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsbrief/internal/domain"
	"newsbrief/internal/feed"
)

const maxLinksPerMessage = 3

const noLinksText = `✖️ No links found\.

Send me an article URL or use /feed with a feed URL\.`

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	return b.withSpinner(ctx, chatID, func() error {
		if message.ForwardFromChat != nil && // If message is forwarded...
			message.ForwardFromChat.Type == "channel" && // ...from channel...
			message.ForwardFromChat.UserName != "" { // ...with public user name.
			return b.handleForwardedChannel(ctx, message.ForwardFromChat, chatID)
		}

		text := strings.TrimSpace(message.Text)
		if text == "" {
			text = strings.TrimSpace(message.Caption)
		}

		if _, ok := commandArgs(text, "/start"); ok {
			return b.handleStartCommand(ctx, chatID)
		}

		if _, ok := commandArgs(text, "/help"); ok {
			return b.handleHelpCommand(ctx, chatID)
		}

		if args, ok := commandArgs(text, "/feed"); ok {
			return b.handleFeedCommand(ctx, chatID, args)
		}

		return b.handleLinks(ctx, chatID, text)
	})
}

func (b *Bot) handleLinks(ctx context.Context, chatID int64, text string) error {
	urls := feed.FindURLs(text)
	if len(urls) == 0 {
		return b.sendMessage(ctx, chatID, noLinksText, b.helpKeyboard)
	}

	if len(urls) > maxLinksPerMessage {
		b.log.InfoContext(ctx, "Too many links in message",
			"chatID", chatID,
			"linkCount", len(urls),
			"maxLinks", maxLinksPerMessage)

		urls = urls[:maxLinksPerMessage]
	}

	results := make([]summaryResult, len(urls))
	var requests []domain.SummaryRequest
	var positions []int

	for i, u := range urls {
		article, err := b.source.FetchArticle(ctx, u)
		if err != nil {
			b.log.WarnContext(ctx, "Failed to fetch article",
				"error", err,
				"articleURL", u,
				"chatID", chatID)

			results[i] = summaryResult{
				request: domain.SummaryRequest{URL: u},
				err:     fmt.Errorf("fetch article: %w", err),
			}

			continue
		}

		requests = append(requests, article)
		positions = append(positions, i)
	}

	for i, result := range b.summarizeAll(ctx, requests) {
		results[positions[i]] = result
	}

	return b.sendSummaries(ctx, chatID, results)
}

func (b *Bot) handleForwardedChannel(
	ctx context.Context,
	chat *tgbotapi.Chat,
	chatID int64,
) error {
	slug := strings.TrimSpace(chat.UserName)

	canonicalURL := feed.TelegramChannelCanonicalURL(slug)
	if canonicalURL == "" {
		b.log.WarnContext(ctx, "Empty canonical URL for forwarded channel",
			"slug", slug,
			"chatID", chatID)

		return b.sendMessage(ctx, chatID, "❌ Failed\\.", b.helpKeyboard)
	}

	return b.summarizeFeed(ctx, chatID, canonicalURL)
}

func (b *Bot) summarizeFeed(ctx context.Context, chatID int64, feedURL string) error {
	requests, err := b.source.FetchFeed(ctx, feedURL, feedSummaryLimit)
	if err != nil {
		errs := []error{fmt.Errorf("fetch feed: %w", err)}

		if sendErr := b.sendMessage(ctx, chatID, "❌ Failed to read the feed\\.", b.helpKeyboard); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	if len(requests) == 0 {
		return b.sendMessage(ctx, chatID, "✖️ The feed has no items\\.", b.helpKeyboard)
	}

	return b.sendSummaries(ctx, chatID, b.summarizeAll(ctx, requests))
}

// commandArgs reports whether text invokes command, optionally addressed as
// /command@botname, and returns its arguments.
func commandArgs(text, command string) (string, bool) {
	rest, ok := strings.CutPrefix(text, command)
	if !ok {
		return "", false
	}

	if rest == "" {
		return "", true
	}

	switch rest[0] {
	case '@':
		_, args, _ := strings.Cut(rest, " ")
		return strings.TrimSpace(args), true
	case ' ', '\n', '\t':
		return strings.TrimSpace(rest), true
	default:
		return "", false
	}
}
