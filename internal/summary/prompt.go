package summary

import (
	"fmt"
	"strings"

	"newsbrief/internal/domain"
)

const (
	missingDescription = "No description available"

	promptTemplate = `You are a concise news editor.
Analyze the following news context and generate exactly 3 short, simple bullet points summarizing the key event, context, and implication.

Rules:
- Output MUST be a valid JSON array of strings, for example ["Point 1", "Point 2", "Point 3"].
- Do NOT wrap the array in Markdown code fences (like ` + "```json" + `). Return the raw array only.

Title: %s
Description: %s
Content Snippet: %s`
)

// BuildPrompt renders the generation instructions for one article. The
// output depends on the request fields only.
func BuildPrompt(req domain.SummaryRequest) string {
	description := req.Description
	if strings.TrimSpace(description) == "" {
		description = missingDescription
	}

	return fmt.Sprintf(promptTemplate, req.Title, description, req.Content)
}
