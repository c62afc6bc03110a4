package domain

// ConceptType classifies how a concept was extracted.
type ConceptType string

const (
	ConceptTopic          ConceptType = "topic"
	ConceptAction         ConceptType = "action"
	ConceptEntity         ConceptType = "entity"
	ConceptKeywordCluster ConceptType = "keyword_cluster"
)

// Concept is a candidate idea extracted from one or more elements.
// Keywords are ordered by relevance. ElementIDs is non-empty and sorted so
// repeated runs over the same input serialize identically.
type Concept struct {
	ID         string      `json:"id"`
	Keywords   []string    `json:"keywords"`
	Type       ConceptType `json:"concept_type"`
	ElementIDs []string    `json:"source_element_ids"`
	Confidence float64     `json:"confidence"`
}

// ConceptCluster is a thematically grouped set of concepts.
// Clusters form a hard partition: each concept id appears in exactly one
// cluster per clustering run. Confidence reflects extraction quality of the
// members; Cohesion reflects how tightly they relate to each other.
type ConceptCluster struct {
	ID         string   `json:"id"`
	Theme      string   `json:"theme"`
	ConceptIDs []string `json:"concept_ids"`
	Confidence float64  `json:"confidence"`
	Cohesion   float64  `json:"cohesion_score"`
}
