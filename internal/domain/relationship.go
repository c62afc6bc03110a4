package domain

// RelationshipType classifies an edge between two note elements.
type RelationshipType string

const (
	RelSpatialProximity RelationshipType = "spatial_proximity"
	RelHierarchyIndent  RelationshipType = "hierarchical_indent"
	RelHierarchyNumber  RelationshipType = "hierarchical_numbering"
	RelVisualConnector  RelationshipType = "visual_connector"
	RelSemanticSimilar  RelationshipType = "semantic_similarity"
)

// Relationship is a scored, typed edge between two note elements.
// SourceID and TargetID always differ. Detection is deterministic: the same
// element pair under the same config always yields the same confidence.
// Relationships are evidence, not a deduplicated graph — two strategies may
// both link the same pair.
type Relationship struct {
	SourceID   string            `json:"source_id"`
	TargetID   string            `json:"target_id"`
	Type       RelationshipType  `json:"relationship_type"`
	Confidence float64           `json:"confidence"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
