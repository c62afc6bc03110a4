package textutil

import (
	"math"
	"reflect"
	"testing"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"filters stopwords", "the quick brown fox", []string{"quick", "brown", "fox"}},
		{"drops short words", "go to it ok milk", []string{"milk"}},
		{"lowercases", "Project Phoenix Launch", []string{"project", "phoenix", "launch"}},
		{"keeps duplicates", "milk and milk again", []string{"milk", "milk", "again"}},
		{"drops numbers", "call 555 1234 today", []string{"call", "today"}},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := TermFrequencies("buy milk today")
	b := TermFrequencies("buy milk tomorrow")
	sim := CosineSimilarity(a, b)
	if sim <= 0.5 || sim >= 1 {
		t.Errorf("similarity of overlapping texts = %v, want in (0.5, 1)", sim)
	}

	if got := CosineSimilarity(a, a); math.Abs(got-1) > 1e-9 {
		t.Errorf("self similarity = %v, want 1", got)
	}
	if got := CosineSimilarity(a, TermFrequencies("unrelated words entirely")); got != 0 {
		t.Errorf("disjoint similarity = %v, want 0", got)
	}
	if got := CosineSimilarity(nil, a); got != 0 {
		t.Errorf("empty vector similarity = %v, want 0", got)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"milk", "eggs"}, []string{"eggs", "milk"}, 1},
		{"half overlap", []string{"milk", "eggs"}, []string{"milk", "bread", "jam"}, 0.25},
		{"disjoint", []string{"milk"}, []string{"bread"}, 0},
		{"empty side", nil, []string{"milk"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
