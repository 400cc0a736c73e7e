package summary

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"newsbrief/internal/domain"
)

func TestParsePointsRoundTrip(t *testing.T) {
	lists := [][]string{
		{"One"},
		{"First, with a comma", "Second: with a colon"},
		{"P1", "P2", "P3"},
		{"a", "b", "c", "d"},
		{"1. numbered inside", "- dashed inside", "quote \" inside", "émoji 🚀", "five"},
	}

	wrappers := map[string]func(string) string{
		"bare":         func(s string) string { return s },
		"json fence":   func(s string) string { return "```json\n" + s + "\n```" },
		"plain fence":  func(s string) string { return "```\n" + s + "\n```" },
		"padded fence": func(s string) string { return "  \n```JSON " + s + "```\n\n" },
		"js fence":     func(s string) string { return "```javascript\n" + s + "\n```" },
		"text fence":   func(s string) string { return "```text\n" + s + "\n```" },
	}

	for _, list := range lists {
		encoded, err := json.Marshal(list)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		for name, wrap := range wrappers {
			t.Run(name, func(t *testing.T) {
				points, degraded := ParsePoints(wrap(string(encoded)))
				if degraded != nil {
					t.Fatalf("unexpected degradation: %v", degraded)
				}

				if !slices.Equal(points, list) {
					t.Fatalf("got %q want %q", points, list)
				}
			})
		}
	}
}

func TestParsePointsNumberedFallback(t *testing.T) {
	points, degraded := ParsePoints("1. First point\n2. Second point")

	want := []string{"First point", "Second point"}
	if !slices.Equal(points, want) {
		t.Fatalf("got %q want %q", points, want)
	}

	var parseErr *ParseDegradedError
	if !errors.As(degraded, &parseErr) || parseErr.Reason != DegradeLineFallback {
		t.Fatalf("expected line fallback degradation, got %v", degraded)
	}
}

func TestParsePointsFallbackIsBoundedAndUnmarked(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"dashes", "- alpha\n- beta\n- gamma\n- delta\n- epsilon", []string{"alpha", "beta", "gamma"}},
		{"asterisks with blank lines", "* one\n\n* two\n   \n* three\n* four", []string{"one", "two", "three"}},
		{"bullet glyphs", "• first\n•second\n· third\n◦ fourth", []string{"first", "second", "third"}},
		{"parenthesised ordinals", "1) a\n2) b\n3) c\n4) d", []string{"a", "b", "c"}},
		{"compact dotted ordinals", "1.First point\n2.Second point", []string{"First point", "Second point"}},
		{"compact parenthesised ordinals", "1)First\n2)Second", []string{"First", "Second"}},
		{"compact colon ordinals", "1:First\n2:Second", []string{"First", "Second"}},
		{"compact dashes", "-First point\n-Second point", []string{"First point", "Second point"}},
		{"compact asterisks", "*First\n*Second", []string{"First", "Second"}},
		{"compact em dashes", "—First\n–Second", []string{"First", "Second"}},
		{
			"bold text after ordinal",
			"Here is the summary:\n\n1. **Key event** happened\n2. Context\n3. Implication",
			[]string{"Here is the summary:", "**Key event** happened", "Context"},
		},
		{"bold text without marker", "**Key event** happened\n*Context", []string{"**Key event** happened", "Context"}},
		{"compact ordinal before bold text", "1.**Key event**", []string{"**Key event**"}},
		{"nested markers", "- 1. nested marker\n-- double dash\n. dotted", []string{"nested marker", "double dash", "dotted"}},
		{"decimal next to compact ordinal", "1.5 million people\n1.First", []string{"1.5 million people", "First"}},
		{"unterminated array", "[\"unterminated\", \"array\"", []string{"[\"unterminated\", \"array\""}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			points, degraded := ParsePoints(test.input)

			if !slices.Equal(points, test.want) {
				t.Fatalf("got %q want %q", points, test.want)
			}

			var parseErr *ParseDegradedError
			if !errors.As(degraded, &parseErr) || parseErr.Reason != DegradeLineFallback {
				t.Fatalf("expected line fallback degradation, got %v", degraded)
			}
		})
	}
}

func TestParsePointsKeepsNumbersThatAreNotMarkers(t *testing.T) {
	points, _ := ParsePoints("3.5% growth was reported\n2024 was a record year\n3:30 is the new deadline")

	want := []string{"3.5% growth was reported", "2024 was a record year", "3:30 is the new deadline"}
	if !slices.Equal(points, want) {
		t.Fatalf("got %q want %q", points, want)
	}
}

func TestParsePointsKeepsSignedNumbers(t *testing.T) {
	points, _ := ParsePoints("-5% drop in sales\n+2 seats gained")

	want := []string{"-5% drop in sales", "+2 seats gained"}
	if !slices.Equal(points, want) {
		t.Fatalf("got %q want %q", points, want)
	}
}

func TestParsePointsPlaceholderForEmptyResults(t *testing.T) {
	inputs := []string{"", "   \n\t", "```json\n```", "[]", "```json\n[]\n```", "- \n* \n1."}

	for _, input := range inputs {
		points, degraded := ParsePoints(input)

		if !slices.Equal(points, []string{domain.PlaceholderPoint}) {
			t.Fatalf("got %q for %q", points, input)
		}

		var parseErr *ParseDegradedError
		if !errors.As(degraded, &parseErr) || parseErr.Reason != DegradeEmpty {
			t.Fatalf("expected empty degradation for %q, got %v", input, degraded)
		}
	}
}

func TestParsePointsCoercesNonArrayJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"just a sentence"`, `"just a sentence"`},
		{"42", "42"},
		{`{"points": ["a"]}`, `{"points": ["a"]}`},
		{"```json\nnull\n```", "null"},
	}

	for _, test := range tests {
		points, degraded := ParsePoints(test.raw)

		if !slices.Equal(points, []string{test.want}) {
			t.Fatalf("got %q want %q", points, []string{test.want})
		}

		var parseErr *ParseDegradedError
		if !errors.As(degraded, &parseErr) || parseErr.Reason != DegradeNotArray {
			t.Fatalf("expected not-array degradation, got %v", degraded)
		}
	}
}

func TestParsePointsStringifiesNonStringItems(t *testing.T) {
	points, degraded := ParsePoints(`["text", 42, true, {"k": 1}]`)

	want := []string{"text", "42", "true", `{"k": 1}`}
	if !slices.Equal(points, want) {
		t.Fatalf("got %q want %q", points, want)
	}

	if degraded == nil || !strings.Contains(degraded.Error(), string(DegradeNonStringItems)) {
		t.Fatalf("expected non-string degradation, got %v", degraded)
	}
}

func TestParsePointsDoesNotTruncateJSONArrays(t *testing.T) {
	points, degraded := ParsePoints(`["1", "2", "3", "4", "5"]`)
	if degraded != nil {
		t.Fatalf("unexpected degradation: %v", degraded)
	}

	if len(points) != 5 {
		t.Fatalf("expected all 5 points, got %d", len(points))
	}
}
