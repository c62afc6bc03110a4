package concept

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/textutil"
)

// A strategy scans all elements and emits zero or more concepts. Strategies
// are plain functions combined by the extractor, not methods on a hierarchy.
type strategy func(elements []domain.NoteElement, cfg Config) []domain.Concept

var strategies = []strategy{
	extractTopics,
	extractActions,
	extractEntities,
}

// actionVerbs seed the imperative-sentence heuristic. Matching the first word
// of a line against this list is crude but deterministic.
var actionVerbs = map[string]struct{}{
	"add": {}, "ask": {}, "book": {}, "build": {}, "buy": {}, "call": {},
	"check": {}, "clean": {}, "create": {}, "design": {}, "develop": {},
	"draft": {}, "email": {}, "finish": {}, "fix": {}, "follow": {},
	"get": {}, "implement": {}, "make": {}, "meet": {}, "order": {},
	"organize": {}, "pay": {}, "plan": {}, "prepare": {}, "read": {},
	"remove": {}, "research": {}, "review": {}, "schedule": {}, "send": {},
	"set": {}, "submit": {}, "test": {}, "update": {}, "verify": {},
	"write": {},
}

// Extractor turns note elements into candidate concepts.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with a validated config.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg}, nil
}

// Extract runs every strategy over the elements and then the keyword-cluster
// fallback, which guarantees that each element with non-empty text appears in
// at least one concept. Concept IDs are sequential per type so repeated runs
// serialize identically.
func (e *Extractor) Extract(elements []domain.NoteElement) []domain.Concept {
	var concepts []domain.Concept
	for _, s := range strategies {
		concepts = append(concepts, s(elements, e.cfg)...)
	}
	concepts = append(concepts, extractFallback(elements, concepts)...)
	return concepts
}

// extractTopics builds topic concepts from term frequency: each of the top-N
// terms that occur at least twice becomes a concept whose confidence scales
// with relative frequency, the most frequent landing at 0.9. Frequency ties
// break on first appearance.
func extractTopics(elements []domain.NoteElement, cfg Config) []domain.Concept {
	freq := make(map[string]int)
	firstSeen := make(map[string]int)
	termElements := make(map[string][]string)
	pos := 0

	for _, el := range elements {
		if el.Empty() {
			continue
		}
		seenHere := make(map[string]bool)
		for _, w := range textutil.Keywords(el.Text) {
			freq[w]++
			if _, ok := firstSeen[w]; !ok {
				firstSeen[w] = pos
			}
			pos++
			if !seenHere[w] {
				termElements[w] = append(termElements[w], el.ID)
				seenHere[w] = true
			}
		}
	}

	terms := make([]string, 0, len(freq))
	for w, n := range freq {
		if n >= 2 {
			terms = append(terms, w)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return firstSeen[terms[i]] < firstSeen[terms[j]]
	})
	if len(terms) > cfg.TopicKeywordCount {
		terms = terms[:cfg.TopicKeywordCount]
	}
	if len(terms) == 0 {
		return nil
	}

	maxFreq := freq[terms[0]]
	concepts := make([]domain.Concept, 0, len(terms))
	for i, w := range terms {
		ids := append([]string(nil), termElements[w]...)
		sort.Strings(ids)
		concepts = append(concepts, domain.Concept{
			ID:         fmt.Sprintf("topic-%d", i+1),
			Keywords:   []string{w},
			Type:       domain.ConceptTopic,
			ElementIDs: ids,
			Confidence: 0.9 * float64(freq[w]) / float64(maxFreq),
		})
	}
	return concepts
}

// extractActions emits an action concept for each element that reads like an
// imperative: an explicit TODO/action prefix, or a leading verb from the seed
// list (after stripping any list marker). Rule-based matches carry high
// confidence.
func extractActions(elements []domain.NoteElement, _ Config) []domain.Concept {
	var concepts []domain.Concept
	for _, el := range elements {
		if el.Empty() {
			continue
		}

		text := el.Text
		if m := textutil.ParseMarker(text); m.Style != textutil.MarkerNone {
			text = m.Rest
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}

		conf := 0.0
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "todo"), strings.HasPrefix(lower, "action:"):
			conf = 0.85
		default:
			words := textutil.Words(trimmed)
			if len(words) > 0 {
				if _, ok := actionVerbs[strings.ToLower(words[0])]; ok {
					conf = 0.75
				}
			}
		}
		if conf == 0 {
			continue
		}

		keywords := textutil.Keywords(trimmed)
		if len(keywords) == 0 {
			keywords = lowercaseWords(trimmed)
		}
		concepts = append(concepts, domain.Concept{
			ID:         fmt.Sprintf("action-%d", len(concepts)+1),
			Keywords:   keywords,
			Type:       domain.ConceptAction,
			ElementIDs: []string{el.ID},
			Confidence: conf,
		})
	}
	return concepts
}

// extractEntities finds capitalized multi-word runs (a proper-noun heuristic)
// and merges identical phrases across elements into one concept.
func extractEntities(elements []domain.NoteElement, _ Config) []domain.Concept {
	type entity struct {
		phrase string
		ids    []string
	}
	var order []string
	found := make(map[string]*entity)

	for _, el := range elements {
		if el.Empty() {
			continue
		}
		for _, phrase := range capitalizedRuns(el.Text) {
			key := strings.ToLower(phrase)
			ent, ok := found[key]
			if !ok {
				ent = &entity{phrase: phrase}
				found[key] = ent
				order = append(order, key)
			}
			if len(ent.ids) == 0 || ent.ids[len(ent.ids)-1] != el.ID {
				ent.ids = append(ent.ids, el.ID)
			}
		}
	}

	concepts := make([]domain.Concept, 0, len(order))
	for i, key := range order {
		ent := found[key]
		ids := append([]string(nil), ent.ids...)
		sort.Strings(ids)
		concepts = append(concepts, domain.Concept{
			ID:         fmt.Sprintf("entity-%d", i+1),
			Keywords:   lowercaseWords(ent.phrase),
			Type:       domain.ConceptEntity,
			ElementIDs: ids,
			Confidence: 0.7,
		})
	}
	return concepts
}

// extractFallback guarantees completeness: every non-empty element missing
// from all prior concepts gets its own keyword-cluster concept built from its
// top terms.
func extractFallback(elements []domain.NoteElement, existing []domain.Concept) []domain.Concept {
	covered := make(map[string]bool)
	for _, c := range existing {
		for _, id := range c.ElementIDs {
			covered[id] = true
		}
	}

	var concepts []domain.Concept
	for _, el := range elements {
		if el.Empty() || covered[el.ID] {
			continue
		}
		keywords := dedupe(textutil.Keywords(el.Text))
		if len(keywords) == 0 {
			keywords = lowercaseWords(el.Text)
		}
		if len(keywords) == 0 {
			keywords = []string{strings.ToLower(strings.TrimSpace(el.Text))}
		}
		concepts = append(concepts, domain.Concept{
			ID:         fmt.Sprintf("keywords-%d", len(concepts)+1),
			Keywords:   keywords,
			Type:       domain.ConceptKeywordCluster,
			ElementIDs: []string{el.ID},
			Confidence: 0.5,
		})
	}
	return concepts
}

// capitalizedRuns returns maximal runs of two or more capitalized words.
func capitalizedRuns(text string) []string {
	words := textutil.Words(text)
	var runs []string
	var current []string

	flush := func() {
		if len(current) >= 2 {
			runs = append(runs, strings.Join(current, " "))
		}
		current = nil
	}

	for _, w := range words {
		if isCapitalized(w) {
			current = append(current, w)
			continue
		}
		flush()
	}
	flush()
	return runs
}

func isCapitalized(w string) bool {
	if len(w) < 2 {
		return false
	}
	if w[0] < 'A' || w[0] > 'Z' {
		return false
	}
	rest := w[1:]
	return strings.ToLower(rest) == rest
}

func lowercaseWords(text string) []string {
	words := textutil.Words(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(w))
	}
	return out
}

func dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	var out []string
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
