package summary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"newsbrief/internal/domain"
)

const maxFallbackPoints = 3

var (
	codeFenceRe = regexp.MustCompile("```[A-Za-z]*")

	// The rune after a marker is captured and put back. A digit or "%" after
	// an ordinal means a number ("3.5%", "1.5 million"), not a marker. Dashes
	// need whitespace or a letter after them. A lone "*" is a bullet, "**"
	// opens bold text.
	listMarkerRe = regexp.MustCompile(
		`^(?:\d+[.):](\s|$|[^\d%\s])|(?:[-+–—]+|\*)(\s|$|\pL)|\.+(\s|$)|[•·‣◦▪●]+)`)
)

type DegradeReason string

const (
	DegradeLineFallback   DegradeReason = "line_fallback"
	DegradeNotArray       DegradeReason = "not_array"
	DegradeNonStringItems DegradeReason = "non_string_items"
	DegradeEmpty          DegradeReason = "empty"
)

// ParseDegradedError describes why a model response did not parse as a
// JSON array of strings. It is informational: ParsePoints still returns
// usable points alongside it.
type ParseDegradedError struct {
	Reason DegradeReason
	Err    error
}

func (e *ParseDegradedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse degraded (%s)", e.Reason)
	}

	return fmt.Sprintf("parse degraded (%s): %v", e.Reason, e.Err)
}

func (e *ParseDegradedError) Unwrap() error {
	return e.Err
}

// ParsePoints turns raw model output into summary points. The returned slice
// is never empty. A non-nil error is always a *ParseDegradedError.
func ParsePoints(raw string) ([]string, error) {
	cleaned := stripCodeFences(raw)
	data := []byte(cleaned)

	var items []json.RawMessage
	decodeErr := json.Unmarshal(data, &items)

	switch {
	case decodeErr == nil && items != nil:
		points, nonString := arrayPoints(items)
		if len(points) == 0 {
			return placeholder(DegradeEmpty, errors.New("empty array"))
		}
		if nonString {
			return points, &ParseDegradedError{Reason: DegradeNonStringItems}
		}
		return points, nil

	case json.Valid(data):
		return []string{cleaned}, &ParseDegradedError{
			Reason: DegradeNotArray,
			Err:    decodeErr,
		}
	}

	points := fallbackPoints(cleaned)
	if len(points) == 0 {
		return placeholder(DegradeEmpty, decodeErr)
	}

	return points, &ParseDegradedError{Reason: DegradeLineFallback, Err: decodeErr}
}

func stripCodeFences(raw string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))
}

func arrayPoints(items []json.RawMessage) ([]string, bool) {
	points := make([]string, 0, len(items))
	nonString := false

	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			points = append(points, s)
			continue
		}

		nonString = true
		points = append(points, string(bytes.TrimSpace(item)))
	}

	return points, nonString
}

func fallbackPoints(text string) []string {
	var points []string

	for line := range strings.Lines(text) {
		point := stripListMarker(line)
		if point == "" {
			continue
		}

		points = append(points, point)
		if len(points) == maxFallbackPoints {
			break
		}
	}

	return points
}

func stripListMarker(line string) string {
	line = strings.TrimSpace(line)

	for {
		stripped := strings.TrimSpace(listMarkerRe.ReplaceAllString(line, "${1}${2}${3}"))
		if stripped == line {
			return line
		}
		line = stripped
	}
}

func placeholder(reason DegradeReason, err error) ([]string, error) {
	return []string{domain.PlaceholderPoint}, &ParseDegradedError{Reason: reason, Err: err}
}
