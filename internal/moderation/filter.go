// Package moderation screens user-submitted text against a configured list
// of forbidden words before it is stored.
package moderation

import (
	"strings"

	"studyhub/internal/apperror"
)

// DefaultWords is the built-in screening list, extended (not replaced) by
// the FORBIDDEN_WORDS configuration.
var DefaultWords = []string{"spam", "advert"}

// Filter performs case-insensitive substring screening.
type Filter struct {
	words []string // stored lowercased
}

// NewFilter builds a Filter from the default list plus extra configured
// words. Blank entries are dropped; matching is case-insensitive.
func NewFilter(extra []string) *Filter {
	words := make([]string, 0, len(DefaultWords)+len(extra))
	for _, w := range append(append([]string{}, DefaultWords...), extra...) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	return &Filter{words: words}
}

// Validate returns a validation error naming the first forbidden word found
// in text, or nil when the text is clean.
func (f *Filter) Validate(text string) error {
	lowered := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(lowered, w) {
			return apperror.ValidationFailed("content", "content contains a forbidden word: "+w)
		}
	}
	return nil
}
