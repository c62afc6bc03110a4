package domain

import "time"

// Note is the persisted ingestion record: one source file, its OCR-extracted
// elements, and bookkeeping about how they were produced.
type Note struct {
	ID         string        `json:"id"`
	SourceFile string        `json:"source_file"`
	PageCount  int           `json:"page_count"`
	Provider   string        `json:"provider"`
	Cost       float64       `json:"cost"`
	Elements   []NoteElement `json:"elements"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Analysis is the persisted output of one pipeline run over a note.
// Structures are stored in ranked order.
type Analysis struct {
	NoteID        string               `json:"note_id"`
	Relationships []Relationship       `json:"relationships"`
	Concepts      []Concept            `json:"concepts"`
	Clusters      []ConceptCluster     `json:"clusters"`
	Structures    []GeneratedStructure `json:"structures"`
	CreatedAt     time.Time            `json:"created_at"`
}

// StructureByType returns the ranked structure of the given type, if present.
func (a Analysis) StructureByType(t StructureType) (GeneratedStructure, bool) {
	for _, s := range a.Structures {
		if s.Type == t {
			return s, true
		}
	}
	return GeneratedStructure{}, false
}
