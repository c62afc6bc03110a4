package concept

import (
	"math"
	"reflect"
	"testing"

	"github.com/inkdex/inkdex/internal/domain"
)

func el(id, text string) domain.NoteElement {
	return domain.NoteElement{
		ID:         id,
		Text:       text,
		Box:        domain.BoundingBox{X: 100, Y: 100, Width: 80, Height: 20},
		Confidence: 0.9,
		Type:       domain.ElementText,
	}
}

func mustExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(DefaultConfig())
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return e
}

func ofConceptType(concepts []domain.Concept, ct domain.ConceptType) []domain.Concept {
	var out []domain.Concept
	for _, c := range concepts {
		if c.Type == ct {
			out = append(out, c)
		}
	}
	return out
}

func TestExtractNumberedShoppingList(t *testing.T) {
	e := mustExtractor(t)
	elements := []domain.NoteElement{
		el("e1", "1. Buy milk"),
		el("e2", "2. Buy eggs"),
	}

	concepts := e.Extract(elements)

	actions := ofConceptType(concepts, domain.ConceptAction)
	if len(actions) != 2 {
		t.Fatalf("action concepts = %d, want 2", len(actions))
	}
	if !reflect.DeepEqual(actions[0].Keywords, []string{"buy", "milk"}) {
		t.Errorf("action 1 keywords = %v, want [buy milk]", actions[0].Keywords)
	}
	if !reflect.DeepEqual(actions[1].Keywords, []string{"buy", "eggs"}) {
		t.Errorf("action 2 keywords = %v, want [buy eggs]", actions[1].Keywords)
	}
	for _, a := range actions {
		if math.Abs(a.Confidence-0.75) > 1e-9 {
			t.Errorf("imperative-verb confidence = %v, want 0.75", a.Confidence)
		}
	}

	topics := ofConceptType(concepts, domain.ConceptTopic)
	if len(topics) != 1 {
		t.Fatalf("topic concepts = %d, want 1", len(topics))
	}
	top := topics[0]
	if !reflect.DeepEqual(top.Keywords, []string{"buy"}) {
		t.Errorf("topic keywords = %v, want [buy]", top.Keywords)
	}
	if math.Abs(top.Confidence-0.9) > 1e-9 {
		t.Errorf("most frequent topic confidence = %v, want 0.9", top.Confidence)
	}
	if !reflect.DeepEqual(top.ElementIDs, []string{"e1", "e2"}) {
		t.Errorf("topic elements = %v, want [e1 e2]", top.ElementIDs)
	}

	// No element needed the fallback.
	if rest := ofConceptType(concepts, domain.ConceptKeywordCluster); len(rest) != 0 {
		t.Errorf("fallback concepts = %d, want 0", len(rest))
	}
}

func TestExtractTopicConfidenceScalesWithFrequency(t *testing.T) {
	e := mustExtractor(t)
	elements := []domain.NoteElement{
		el("e1", "budget review budget planning"),
		el("e2", "budget planning session"),
	}

	topics := ofConceptType(e.Extract(elements), domain.ConceptTopic)
	if len(topics) != 2 {
		t.Fatalf("topic concepts = %d, want 2 (budget, planning)", len(topics))
	}
	// budget appears 3 times, planning 2.
	if !reflect.DeepEqual(topics[0].Keywords, []string{"budget"}) {
		t.Fatalf("first topic = %v, want [budget]", topics[0].Keywords)
	}
	if math.Abs(topics[0].Confidence-0.9) > 1e-9 {
		t.Errorf("top topic confidence = %v, want 0.9", topics[0].Confidence)
	}
	want := 0.9 * 2.0 / 3.0
	if math.Abs(topics[1].Confidence-want) > 1e-9 {
		t.Errorf("second topic confidence = %v, want %v", topics[1].Confidence, want)
	}
}

func TestExtractTodoPrefix(t *testing.T) {
	e := mustExtractor(t)
	concepts := e.Extract([]domain.NoteElement{el("e1", "TODO call dentist")})

	actions := ofConceptType(concepts, domain.ConceptAction)
	if len(actions) != 1 {
		t.Fatalf("action concepts = %d, want 1", len(actions))
	}
	if math.Abs(actions[0].Confidence-0.85) > 1e-9 {
		t.Errorf("todo-prefix confidence = %v, want 0.85", actions[0].Confidence)
	}
}

func TestExtractEntities(t *testing.T) {
	e := mustExtractor(t)
	elements := []domain.NoteElement{
		el("e1", "met Sarah Johnson yesterday"),
		el("e2", "lunch with Sarah Johnson next week"),
	}

	entities := ofConceptType(e.Extract(elements), domain.ConceptEntity)
	if len(entities) != 1 {
		t.Fatalf("entity concepts = %d, want 1 (merged across elements)", len(entities))
	}
	ent := entities[0]
	if !reflect.DeepEqual(ent.Keywords, []string{"sarah", "johnson"}) {
		t.Errorf("entity keywords = %v, want [sarah johnson]", ent.Keywords)
	}
	if !reflect.DeepEqual(ent.ElementIDs, []string{"e1", "e2"}) {
		t.Errorf("entity elements = %v, want [e1 e2]", ent.ElementIDs)
	}
	if math.Abs(ent.Confidence-0.7) > 1e-9 {
		t.Errorf("entity confidence = %v, want 0.7", ent.Confidence)
	}
}

func TestExtractFallbackCoversEveryElement(t *testing.T) {
	e := mustExtractor(t)
	elements := []domain.NoteElement{
		el("e1", "zzz qqq"),
		el("e2", "ok go"), // nothing survives keyword filtering
		el("e3", "   "),   // blank elements are ignored entirely
	}

	concepts := e.Extract(elements)

	covered := make(map[string]bool)
	for _, c := range concepts {
		for _, id := range c.ElementIDs {
			covered[id] = true
		}
	}
	if !covered["e1"] || !covered["e2"] {
		t.Fatalf("fallback left elements uncovered: %v", covered)
	}
	if covered["e3"] {
		t.Error("blank element should not appear in any concept")
	}

	fallback := ofConceptType(concepts, domain.ConceptKeywordCluster)
	if len(fallback) != 2 {
		t.Fatalf("fallback concepts = %d, want 2", len(fallback))
	}
	for _, c := range fallback {
		if math.Abs(c.Confidence-0.5) > 1e-9 {
			t.Errorf("fallback confidence = %v, want 0.5", c.Confidence)
		}
		if len(c.Keywords) == 0 {
			t.Errorf("fallback concept %s has no keywords", c.ID)
		}
	}
}

func TestExtractEmpty(t *testing.T) {
	e := mustExtractor(t)
	if got := e.Extract(nil); len(got) != 0 {
		t.Errorf("Extract(nil) = %v, want empty", got)
	}
}
