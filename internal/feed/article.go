package feed

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsbrief/internal/domain"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	maxDescriptionChars = 500
	maxContentChars     = 1500
	maxContentParagraph = 5
)

// Most specific first.
var contentSelectors = []string{"article p", "main p", "body p"}

// ParseArticle extracts title, description and a bounded content snippet
// from an HTML page.
func ParseArticle(r io.Reader, pageURL string) (domain.SummaryRequest, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.SummaryRequest{}, fmt.Errorf("create document from reader: %w", err)
	}

	title := metaContent(doc, "meta[property='og:title']")
	if title == "" {
		title = collapseSpaces(doc.Find("title").First().Text())
	}

	description := metaContent(doc, "meta[property='og:description']")
	if description == "" {
		description = metaContent(doc, "meta[name='description']")
	}

	var paragraphs []string

	for _, selector := range contentSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := collapseSpaces(s.Text())
			if text != "" && !slices.Contains(paragraphs, text) {
				paragraphs = append(paragraphs, text)
			}

			return len(paragraphs) < maxContentParagraph
		})

		if len(paragraphs) > 0 {
			break
		}
	}

	content := strings.Join(paragraphs, "\n")

	if title == "" && description == "" && content == "" {
		return domain.SummaryRequest{}, errors.New("page has no readable text")
	}

	return domain.SummaryRequest{
		URL:         strings.TrimSpace(pageURL),
		Title:       title,
		Description: truncate(description, maxDescriptionChars),
		Content:     truncate(content, maxContentChars),
	}, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")

	return collapseSpaces(content)
}

// htmlText renders an HTML fragment as plain text.
func htmlText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpaces(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpaces(fragment)
	}

	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	return strings.TrimSpace(string(runes[:maxChars])) + "…"
}
