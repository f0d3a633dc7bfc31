package chat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ParseDenylist splits the comma-delimited filtered-words setting into usable
// entries. Entries are trimmed; empty and whitespace-only entries are dropped.
func ParseDenylist(filteredWords string) []string {
	if filteredWords == "" {
		return nil
	}

	words := make([]string, 0)
	for _, raw := range strings.Split(filteredWords, ",") {
		word := strings.TrimSpace(raw)
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

// Redact replaces every case-insensitive occurrence of each denylist word in text
// with a run of '*' of the word's length. Words are applied sequentially in denylist
// order, so an earlier replacement can prevent a later word from matching an
// overlapping span; this order dependence is intentional, observable behavior.
// Words are matched literally, never interpreted as patterns.
func Redact(text string, denylist []string) string {
	for _, word := range denylist {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(word))
		if err != nil {
			continue
		}

		mask := strings.Repeat("*", utf8.RuneCountInString(word))
		text = re.ReplaceAllLiteralString(text, mask)
	}
	return text
}
