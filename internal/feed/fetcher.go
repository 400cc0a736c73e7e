package feed

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"mvdan.cc/xurls/v2"

	"newsbrief/internal/domain"
)

const (
	clientTimeout   = 20 * time.Second
	DefaultFeedSize = 3
	maxArticleBytes = 2 << 20
)

// Fetcher turns article pages and feeds into summary requests.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
	log    *slog.Logger
}

func NewFetcher(client *http.Client, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: clientTimeout}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &Fetcher{
		client: client,
		parser: parser,
		log:    log,
	}
}

func (f *Fetcher) FetchArticle(
	ctx context.Context,
	articleURL string,
) (domain.SummaryRequest, error) {
	articleURL = strings.TrimSpace(articleURL)
	if articleURL == "" {
		return domain.SummaryRequest{}, errors.New("article URL is empty")
	}

	if _, err := url.ParseRequestURI(articleURL); err != nil {
		return domain.SummaryRequest{}, fmt.Errorf("parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return domain.SummaryRequest{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req) //nolint:gosec // user supplied article URL
	if err != nil {
		return domain.SummaryRequest{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"articleURL", articleURL,
				"operation", "FetchArticle")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.SummaryRequest{}, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	article, err := ParseArticle(io.LimitReader(resp.Body, maxArticleBytes), articleURL)
	if err != nil {
		return domain.SummaryRequest{}, fmt.Errorf("parse article: %w", err)
	}

	return article, nil
}

// FetchFeed returns at most limit newest items of an RSS/Atom feed or a
// public Telegram channel.
func (f *Fetcher) FetchFeed(
	ctx context.Context,
	feedURL string,
	limit int,
) ([]domain.SummaryRequest, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, errors.New("feed URL is empty")
	}

	if limit <= 0 {
		limit = DefaultFeedSize
	}

	if ok, slug := isTelegramChannelURL(feedURL); ok {
		return f.fetchTelegramChannel(ctx, slug, limit)
	}

	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	items := slices.Clone(parsed.Items)
	slices.SortStableFunc(items, func(a, b *gofeed.Item) int {
		return cmp.Compare(itemTime(b).Unix(), itemTime(a).Unix())
	})

	requests := make([]domain.SummaryRequest, 0, min(limit, len(items)))

	for _, item := range items {
		if len(requests) == limit {
			break
		}

		request, ok := f.feedItemRequest(ctx, feedURL, item)
		if !ok {
			continue
		}

		requests = append(requests, request)
	}

	return requests, nil
}

// FindURLs returns the distinct http(s) URLs mentioned in text.
func FindURLs(text string) []string {
	found := xurls.Strict().FindAllString(text, -1)

	urls := make([]string, 0, len(found))
	seen := make(map[string]struct{}, len(found))

	for _, u := range found {
		u = strings.TrimSpace(u)

		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			continue
		}

		if _, ok := seen[u]; ok {
			continue
		}

		urls = append(urls, u)
		seen[u] = struct{}{}
	}

	return urls
}

func (f *Fetcher) feedItemRequest(
	ctx context.Context,
	feedURL string,
	item *gofeed.Item,
) (domain.SummaryRequest, bool) {
	itemURL := strings.TrimSpace(item.Link)
	itemTitle := strings.TrimSpace(item.Title)

	if itemURL == "" {
		f.log.WarnContext(ctx, "Skipping feed item with empty URL",
			"feedURL", feedURL,
			"itemTitle", itemTitle)

		return domain.SummaryRequest{}, false
	}

	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}

	return domain.SummaryRequest{
		URL:         itemURL,
		Title:       itemTitle,
		Description: truncate(htmlText(item.Description), maxDescriptionChars),
		Content:     truncate(htmlText(content), maxContentChars),
	}, true
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return time.Time{}
	}
}
