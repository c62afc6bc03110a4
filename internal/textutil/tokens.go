// Package textutil holds the plain-text helpers shared by the organization
// pipeline: tokenizing, stopword filtering, list-marker parsing, and lexical
// similarity. Everything here is deterministic and allocation-light; the
// pipeline's reproducibility guarantees rest on it.
package textutil

import (
	"math"
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"my": {}, "your": {}, "his": {}, "her": {}, "its": {}, "our": {},
	"their": {}, "not": {}, "no": {}, "so": {}, "as": {}, "from": {},
}

// IsStopword reports whether the lowercase word is a stopword.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Words splits text into its alphabetic word tokens, preserving case and order.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Keywords returns the lowercase content words of text: alphabetic tokens of
// at least three letters with stopwords removed, in order of appearance,
// duplicates preserved. Callers that need a set deduplicate themselves.
func Keywords(text string) []string {
	var out []string
	for _, w := range Words(text) {
		lw := strings.ToLower(w)
		if len(lw) < 3 || !isAlpha(lw) || IsStopword(lw) {
			continue
		}
		out = append(out, lw)
	}
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// TermFrequencies returns keyword counts for text.
func TermFrequencies(text string) map[string]int {
	tf := make(map[string]int)
	for _, w := range Keywords(text) {
		tf[w]++
	}
	return tf
}

// CosineSimilarity computes cosine similarity between two term-frequency
// vectors. Returns 0 when either vector is empty.
func CosineSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for k, va := range a {
		na += float64(va * va)
		if vb, ok := b[k]; ok {
			dot += float64(va * vb)
		}
	}
	for _, vb := range b {
		nb += float64(vb * vb)
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Jaccard computes Jaccard similarity between two keyword lists treated as
// sets. Returns 0 when either is empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}
	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
