package bot

import (
	"context"

	"newsbrief/internal/feed"
)

const feedSummaryLimit = feed.DefaultFeedSize

const welcomeText = `🤖 *Welcome to Newsbrief\!*

I turn news articles into three short key points\. You can:

– Send me up to three article links in one message
– Summarise the newest posts of an RSS / Atom feed with /feed \<url\>
– Forward a post from a public channel to summarise its newest posts
– Get this help again with /help`

const helpText = `*ℹ️ Help*

– *Links*: send a message with article URLs, I reply with key points for each
– */feed \<url\>*: key points for the newest three items of a feed or a public Telegram channel
– *Forwarded posts*: forward a post from a public channel to summarise the channel

Summaries are cached, so asking again for the same article is instant\.`

const feedUsageText = `✖️ Feed URL is missing\.

Usage: /feed https://example\.com/rss`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessage(ctx, chatID, welcomeText, b.helpKeyboard)
}

func (b *Bot) handleHelpCommand(ctx context.Context, chatID int64) error {
	return b.sendMessage(ctx, chatID, helpText, nil)
}

func (b *Bot) handleFeedCommand(ctx context.Context, chatID int64, args string) error {
	urls := feed.FindURLs(args)
	if len(urls) == 0 {
		return b.sendMessage(ctx, chatID, feedUsageText, b.helpKeyboard)
	}

	return b.summarizeFeed(ctx, chatID, urls[0])
}
