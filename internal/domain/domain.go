package domain

import (
	"errors"
	"time"
)

// PlaceholderPoint replaces a point list that came out empty.
const PlaceholderPoint = "Could not generate summary."

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrGenerationFailed = errors.New("generation failed")
	ErrDuplicateKey     = errors.New("summary already exists")
)

type SummaryRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// SummaryRecord is written once per article URL and never updated.
type SummaryRecord struct {
	URL       string
	Points    []string
	CreatedAt time.Time
}
