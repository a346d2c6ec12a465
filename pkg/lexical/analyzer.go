package lexical

import (
	"strings"
	"unicode"
)

// The window analyzer is pure: every function here maps its inputs to a
// value with no side effects, so QC runs over identical drafts yield
// identical lemma counts.

// Locate returns the byte offset of the first case-insensitive verbatim
// occurrence of anchor in text. The false return is a signaled result,
// not an error: QC consumes it as the ANCHOR_NOT_FOUND condition.
func Locate(text, anchor string) (int, bool) {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(anchor))
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// LocateSentence returns the index of the first sentence containing the
// anchor text, case-insensitively.
func LocateSentence(sentences []string, anchor string) (int, bool) {
	needle := strings.ToLower(anchor)
	for i, s := range sentences {
		if strings.Contains(strings.ToLower(s), needle) {
			return i, true
		}
	}
	return 0, false
}

// Window returns the sentences within radius of pos, inclusive, in order.
func Window(sentences []string, pos, radius int) []string {
	if len(sentences) == 0 {
		return nil
	}
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius + 1
	if end > len(sentences) {
		end = len(sentences)
	}
	return sentences[start:end]
}

// ExtractLemmas lemmatizes every token in the window and returns the
// lemma multiset. Proper nouns (capitalized tokens that do not open their
// sentence) keep their surface form, lowercased, so brand names are not
// conflated with homograph common nouns.
func ExtractLemmas(window []string, lem Lemmatizer) map[string]int {
	counts := make(map[string]int)
	for _, sentence := range window {
		for i, token := range Tokenize(sentence) {
			if i > 0 && isCapitalized(token) {
				counts[strings.ToLower(token)]++
				continue
			}
			counts[lem.Lemma(token)]++
		}
	}
	return counts
}

// MatchTerms counts, per planned term, how often its lemma occurs in the
// window. Multi-word terms fall back to a case-insensitive substring match
// over the joined window. The result has an entry only for terms found at
// least once.
func MatchTerms(window []string, terms []string, lem Lemmatizer) map[string]int {
	lemmas := ExtractLemmas(window, lem)
	joined := strings.ToLower(strings.Join(window, " "))

	found := make(map[string]int)
	for _, term := range terms {
		if strings.ContainsRune(term, ' ') {
			if n := strings.Count(joined, strings.ToLower(term)); n > 0 {
				found[term] = n
			}
			continue
		}
		if n := lemmas[lem.Lemma(term)]; n > 0 {
			found[term] = n
		}
	}
	return found
}

func isCapitalized(token string) bool {
	for _, r := range token {
		return unicode.IsUpper(r)
	}
	return false
}
