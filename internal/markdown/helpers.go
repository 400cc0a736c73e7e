package markdown

import (
	"fmt"
	"strings"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const (
	mdV2SpecialChars = `._[](){}#|!+-=*~>` + "`" + `\`
	mdV2URLChars     = `)\`
)

//nolint:gochecknoglobals // Lookup tables meant to be immutable.
var (
	mdV2Lookup    = lookup(mdV2SpecialChars)
	mdV2URLLookup = lookup(mdV2URLChars)
)

func EscapeV2(input string) string {
	return escape(input, &mdV2Lookup)
}

// EscapeURL escapes the characters that must be escaped inside the (...)
// part of an inline link.
func EscapeURL(input string) string {
	return escape(input, &mdV2URLLookup)
}

func Link(text, url string) string {
	return fmt.Sprintf("[%s](%s)", EscapeV2(text), EscapeURL(url))
}

func Bold(text string) string {
	return "*" + EscapeV2(text) + "*"
}

func escape(input string, table *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if table[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if table[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func lookup(chars string) [256]bool {
	var m [256]bool
	for i := range len(chars) {
		m[chars[i]] = true
	}
	return m
}
