package feed

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsbrief/internal/domain"
)

const (
	minPartsForTelegramChannelSlugStartingWithS = 2
	telegramHost                                = "t.me"
	telegramPostTitleMaxChars                   = 120
)

var telegramSlugRe = regexp.MustCompile(`^\w{5,32}$`)

type channelItem struct {
	URL       string
	text      string
	published time.Time
}

func TelegramMessageCanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

func TelegramChannelCanonicalURL(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ""
	}

	return fmt.Sprintf("https://%s/s/%s", telegramHost, slug)
}

func isTelegramChannelURL(raw string) (bool, string) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false, ""
	}

	if u.Host != telegramHost {
		return false, ""
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return false, ""
	}

	parts := strings.Split(path, "/")

	var slug string

	switch parts[0] {
	case "s":
		if len(parts) < minPartsForTelegramChannelSlugStartingWithS {
			return false, ""
		}
		slug = parts[1]
	default:
		// t.me/<slug>/<id> links a single message, not a channel.
		if len(parts) > 1 {
			return false, ""
		}
		slug = parts[0]
	}

	slug = strings.TrimSpace(slug)

	if !telegramSlugRe.MatchString(slug) {
		return false, ""
	}

	return true, slug
}

func (f *Fetcher) fetchTelegramChannel(
	ctx context.Context,
	slug string,
	limit int,
) ([]domain.SummaryRequest, error) {
	items, title, err := f.fetchTelegramChannelPosts(ctx, slug)
	if len(items) == 0 && err != nil {
		return nil, fmt.Errorf("fetch Telegram channel posts: %w", err)
	}
	if err != nil {
		f.log.WarnContext(ctx, "Skipped some Telegram channel posts",
			"error", err,
			"slug", slug)
	}

	slices.SortStableFunc(items, func(a, b channelItem) int {
		return cmp.Compare(b.published.Unix(), a.published.Unix())
	})

	requests := make([]domain.SummaryRequest, 0, min(limit, len(items)))

	for _, item := range items {
		if len(requests) == limit {
			break
		}

		if item.text == "" {
			continue
		}

		requests = append(requests, domain.SummaryRequest{
			URL:         item.URL,
			Title:       telegramPostTitle(item.text),
			Description: title,
			Content:     truncate(item.text, maxContentChars),
		})
	}

	return requests, nil
}

func (f *Fetcher) fetchTelegramChannelPosts(
	ctx context.Context,
	slug string,
) ([]channelItem, string, error) {
	canonicalURL := TelegramChannelCanonicalURL(slug)
	if canonicalURL == "" {
		return nil, "", errors.New("slug is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonicalURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req) //nolint:gosec // Telegram URL
	if err != nil {
		return nil, "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"canonicalURL", canonicalURL,
				"operation", "fetchTelegramChannelPosts",
				"slug", slug)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("create document from reader: %w", err)
	}

	return parseTelegramChannelDocument(doc)
}

func parseTelegramChannelDocument(doc *goquery.Document) ([]channelItem, string, error) {
	var items []channelItem
	var errs []error

	doc.Find("a.tgme_widget_message_date").Each(func(_ int, s *goquery.Selection) {
		item, processErr := processFoundDocItem(s)
		if processErr != nil {
			errs = append(errs, fmt.Errorf("process found doc item: %w", processErr))
			return
		}

		items = append(items, item)
	})

	title := metaContent(doc, "meta[property='og:title']")
	if title == "" {
		title = collapseSpaces(doc.Find(".tgme_channel_info_header_title").Text())
	}

	return items, title, errors.Join(errs...)
}

func processFoundDocItem(s *goquery.Selection) (channelItem, error) {
	href, ok := s.Attr("href")
	if !ok || href == "" {
		return channelItem{}, errors.New("href empty")
	}

	href = TelegramMessageCanonicalURL(href)

	var textBuilder strings.Builder
	message := s.ParentsFiltered(".tgme_widget_message").First()
	message.Find(".tgme_widget_message_text, .tgme_widget_message_caption").Each(
		func(_ int, inner *goquery.Selection) {
			inner.Find("br").Each(func(_ int, br *goquery.Selection) {
				br.ReplaceWithHtml("\n")
			})
			fragment := strings.TrimSpace(inner.Text())
			if fragment == "" {
				return
			}
			if textBuilder.Len() > 0 {
				textBuilder.WriteString("\n")
			}
			textBuilder.WriteString(fragment)
		},
	)
	text := strings.TrimSpace(textBuilder.String())

	var t time.Time
	datetime := strings.TrimSpace(s.Find("time").AttrOr("datetime", ""))

	if datetime != "" {
		parsed, timeParseErr := time.Parse(time.RFC3339, datetime)
		if timeParseErr != nil {
			return channelItem{}, fmt.Errorf("parse datetime: %w", timeParseErr)
		}
		t = parsed
	}

	if t.IsZero() {
		t = time.Now().UTC()
	}

	return channelItem{URL: href, text: text, published: t}, nil
}

func telegramPostTitle(text string) string {
	firstLine, _, _ := strings.Cut(text, "\n")

	return truncate(collapseSpaces(firstLine), telegramPostTitleMaxChars)
}
