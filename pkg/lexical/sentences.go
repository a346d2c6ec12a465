package lexical

import (
	"regexp"
	"strings"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// SplitSentences splits prose into sentences on terminal punctuation
// followed by whitespace or end of text. Punctuation inside a token, as
// in URLs and domain names, never terminates a sentence.
// Good enough for Swedish and English marketing copy; abbreviation-heavy
// text will over-split, which only ever widens the LSI window.
func SplitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

var wordRe = regexp.MustCompile(`\p{L}[\p{L}\p{N}]*`)

// Tokenize extracts word tokens from text, preserving case.
func Tokenize(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// CountWords counts word tokens in text.
func CountWords(text string) int {
	return len(wordRe.FindAllString(text, -1))
}
