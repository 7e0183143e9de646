package services

import "strings"

// stopWords are dropped before keyword candidates are built. The list is
// deliberately small; collection matching works on raw words and does not
// use it.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "for": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "it": {}, "its": {}, "i": {}, "my": {},
	"me": {}, "we": {}, "our": {}, "you": {}, "your": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "as": {}, "so": {},
}

// normalizeText lowercases text and strips punctuation, keeping letters,
// digits, and whitespace. Apostrophes survive so contractions stay intact.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// tokenize returns lowercased, punctuation-stripped tokens with stop
// words removed.
func tokenize(text string) []string {
	fields := strings.Fields(normalizeText(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// keywordCandidates builds the match candidates for keyword scoring:
// every token plus every contiguous bigram and trigram, so phrase
// patterns like "remind me to" can match as a unit.
func keywordCandidates(text string) []string {
	tokens := tokenize(text)
	candidates := make([]string, 0, len(tokens)*3)
	candidates = append(candidates, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		candidates = append(candidates, tokens[i]+" "+tokens[i+1])
	}
	for i := 0; i+2 < len(tokens); i++ {
		candidates = append(candidates, tokens[i]+" "+tokens[i+1]+" "+tokens[i+2])
	}
	return candidates
}

// contentWords returns raw lowercased words of length >= 3, no stop-word
// filtering. Collection and learned-pattern matching operate on these.
func contentWords(text string) []string {
	fields := strings.Fields(normalizeText(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 3 {
			words = append(words, f)
		}
	}
	return words
}

// wordSet converts a word list into a membership set.
func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// collapseWhitespace squeezes runs of whitespace into single spaces and
// trims the ends.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
