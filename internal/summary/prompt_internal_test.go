package summary

import (
	"strings"
	"testing"

	"newsbrief/internal/domain"
)

func TestBuildPromptEmbedsArticle(t *testing.T) {
	prompt := BuildPrompt(domain.SummaryRequest{
		URL:         "https://example.com/a",
		Title:       "Rates rise",
		Description: "Central bank moves",
		Content:     "The bank raised rates by 25bp.",
	})

	for _, want := range []string{
		"exactly 3",
		"JSON array of strings",
		"```json",
		"Title: Rates rise\n",
		"Description: Central bank moves\n",
		"Content Snippet: The bank raised rates by 25bp.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt is missing %q:\n%s", want, prompt)
		}
	}

	if strings.Contains(prompt, "https://example.com/a") {
		t.Fatalf("prompt must not embed the URL")
	}
}

func TestBuildPromptPlaceholders(t *testing.T) {
	prompt := BuildPrompt(domain.SummaryRequest{URL: "https://x/1", Title: "A"})

	if !strings.Contains(prompt, "Description: "+missingDescription+"\n") {
		t.Fatalf("expected description placeholder:\n%s", prompt)
	}

	if !strings.HasSuffix(prompt, "Content Snippet: ") {
		t.Fatalf("expected empty content snippet:\n%s", prompt)
	}
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	req := domain.SummaryRequest{URL: "https://x/1", Title: "A", Description: "B", Content: "C"}

	if BuildPrompt(req) != BuildPrompt(req) {
		t.Fatalf("expected identical prompts for identical input")
	}
}
