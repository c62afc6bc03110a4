// Package concept extracts candidate ideas from note elements and groups them
// into thematic clusters. Extraction strategies are independent passes over
// the same element list; clustering is agglomerative over a lexical
// similarity matrix biased by the detected relationship graph. Both halves
// are pure and deterministic.
package concept

import (
	"fmt"

	"github.com/inkdex/inkdex/internal/domain"
)

// Config holds extraction and clustering parameters.
type Config struct {
	// TopicKeywordCount caps how many frequent terms become topic concepts.
	TopicKeywordCount int `yaml:"topic_keyword_count"`
	// ClusterMergeThreshold stops agglomeration once the best remaining merge
	// falls below it; this, not a fixed k, decides the final cluster count.
	ClusterMergeThreshold float64 `yaml:"cluster_merge_threshold"`
	// RelationshipBoostCap limits how much a relationship between two
	// concepts' source elements can raise their similarity.
	RelationshipBoostCap float64 `yaml:"relationship_boost_cap"`
}

// DefaultConfig returns the documented extraction/clustering defaults.
func DefaultConfig() Config {
	return Config{
		TopicKeywordCount:     5,
		ClusterMergeThreshold: 0.4,
		RelationshipBoostCap:  0.3,
	}
}

// Validate rejects out-of-range parameters.
func (c Config) Validate() error {
	if c.TopicKeywordCount < 1 {
		return fmt.Errorf("%w: topic_keyword_count %d must be positive", domain.ErrInvalidConfig, c.TopicKeywordCount)
	}
	if c.ClusterMergeThreshold < 0 || c.ClusterMergeThreshold > 1 {
		return fmt.Errorf("%w: cluster_merge_threshold %v out of [0,1]", domain.ErrInvalidConfig, c.ClusterMergeThreshold)
	}
	if c.RelationshipBoostCap < 0 || c.RelationshipBoostCap > 1 {
		return fmt.Errorf("%w: relationship_boost_cap %v out of [0,1]", domain.ErrInvalidConfig, c.RelationshipBoostCap)
	}
	return nil
}
