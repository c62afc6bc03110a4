package domain

// StructureType identifies one candidate document organization.
type StructureType string

const (
	StructureOutline  StructureType = "hierarchical_outline"
	StructureMindmap  StructureType = "mindmap"
	StructureTimeline StructureType = "timeline"
	StructureProcess  StructureType = "process_flow"
)

// StructureNode is one node of a generated structure tree. Kind describes its
// rendering role (section, concept, branch, step, supporting). Every
// ClusterID/ConceptID/ElementID a node carries must exist in the generator's
// input set.
type StructureNode struct {
	ID         string           `json:"id"`
	Content    string           `json:"content"`
	Kind       string           `json:"kind"`
	Level      int              `json:"level"`
	Confidence float64          `json:"confidence"`
	ClusterID  string           `json:"cluster_id,omitempty"`
	ConceptID  string           `json:"concept_id,omitempty"`
	ElementID  string           `json:"element_id,omitempty"`
	Children   []*StructureNode `json:"children,omitempty"`
}

// GeneratedStructure is one candidate document organization with its scores.
// Completeness is the fraction of input concepts the structure incorporates;
// Confidence reflects the member confidences weighted by role plus per-type
// penalties. Candidates are ranked by Confidence * Completeness.
type GeneratedStructure struct {
	ID           string         `json:"id"`
	Type         StructureType  `json:"structure_type"`
	Title        string         `json:"title"`
	Confidence   float64        `json:"confidence"`
	Completeness float64        `json:"completeness_score"`
	Root         *StructureNode `json:"structure_data"`
}

// Score is the ranking key for a structure candidate.
func (s GeneratedStructure) Score() float64 {
	return s.Confidence * s.Completeness
}
