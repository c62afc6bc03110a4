package inkdex

import (
	"time"

	"github.com/inkdex/inkdex/internal/domain"
)

// Quality selects the OCR cost/accuracy trade-off.
type Quality string

// Quality constants.
const (
	QualityFast     Quality = "fast"
	QualityBalanced Quality = "balanced"
	QualityPremium  Quality = "premium"
)

// StructureType identifies a generated document structure.
type StructureType string

// Structure type constants.
const (
	StructureOutline  StructureType = "hierarchical_outline"
	StructureMindmap  StructureType = "mindmap"
	StructureTimeline StructureType = "timeline"
	StructureProcess  StructureType = "process_flow"
)

// BoundingBox is an element's position on the page, in pixels.
type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Element is one recognized line of handwriting.
type Element struct {
	ID         string
	Text       string
	Box        BoundingBox
	Confidence float64
	PageIndex  int
}

// Note is an ingested handwritten document.
type Note struct {
	ID         string
	SourceFile string
	PageCount  int
	Provider   string
	Cost       float64
	Elements   []Element
	CreatedAt  time.Time
}

// StructureNode is one node of a generated structure tree.
type StructureNode struct {
	ID         string
	Content    string
	Kind       string
	Level      int
	Confidence float64
	Children   []*StructureNode
}

// Structure is one generated document organization, scored for ranking.
type Structure struct {
	ID           string
	Type         StructureType
	Title        string
	Confidence   float64
	Completeness float64
	Root         *StructureNode
}

// Score is the ranking key (confidence times completeness).
func (s Structure) Score() float64 {
	return s.Confidence * s.Completeness
}

// Analysis is the pipeline output for one note. Structures are ranked
// best-first.
type Analysis struct {
	NoteID     string
	Structures []Structure
	CreatedAt  time.Time
}

// SpendPeriod is the aggregation window for spend reports.
type SpendPeriod string

// Spend period constants.
const (
	PeriodDay   SpendPeriod = "day"
	PeriodMonth SpendPeriod = "month"
)

// SpendReport is the OCR spend snapshot for one period. Dollar amounts;
// Limit 0 means unlimited, Remaining -1 likewise.
type SpendReport struct {
	Period    SpendPeriod
	Limit     float64
	Used      float64
	Remaining float64
	Exhausted bool
	ResetsAt  time.Time
}

func domainStructureType(t StructureType) domain.StructureType {
	return domain.StructureType(t)
}

func noteFromDomain(n domain.Note) Note {
	out := Note{
		ID:         n.ID,
		SourceFile: n.SourceFile,
		PageCount:  n.PageCount,
		Provider:   n.Provider,
		Cost:       n.Cost,
		CreatedAt:  n.CreatedAt,
	}
	for _, el := range n.Elements {
		out.Elements = append(out.Elements, Element{
			ID:         el.ID,
			Text:       el.Text,
			Box:        BoundingBox(el.Box),
			Confidence: el.Confidence,
			PageIndex:  el.PageIndex,
		})
	}
	return out
}

func analysisFromDomain(a domain.Analysis) Analysis {
	out := Analysis{
		NoteID:    a.NoteID,
		CreatedAt: a.CreatedAt,
	}
	for _, s := range a.Structures {
		out.Structures = append(out.Structures, Structure{
			ID:           s.ID,
			Type:         StructureType(s.Type),
			Title:        s.Title,
			Confidence:   s.Confidence,
			Completeness: s.Completeness,
			Root:         nodeFromDomain(s.Root),
		})
	}
	return out
}

func nodeFromDomain(n *domain.StructureNode) *StructureNode {
	if n == nil {
		return nil
	}
	out := &StructureNode{
		ID:         n.ID,
		Content:    n.Content,
		Kind:       n.Kind,
		Level:      n.Level,
		Confidence: n.Confidence,
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, nodeFromDomain(child))
	}
	return out
}
