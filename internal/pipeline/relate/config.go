// Package relate discovers pairwise relationships between note elements:
// spatial proximity, indentation and numbering hierarchies, arrow-token
// connectors, and lexical similarity. Detection is a pure function of the
// element list and the config; identical inputs always produce identical
// output, in the same order.
package relate

import (
	"fmt"

	"github.com/inkdex/inkdex/internal/domain"
)

// Config holds the relationship detection thresholds.
type Config struct {
	// SpatialProximityThreshold is the absolute center distance (px) below
	// which two elements count as spatially related. Zero means auto:
	// SpatialProximityFactor times the median element height on the page.
	SpatialProximityThreshold float64 `yaml:"spatial_proximity_threshold"`
	// SpatialProximityFactor scales the median element height when the
	// absolute threshold is unset.
	SpatialProximityFactor float64 `yaml:"spatial_proximity_factor"`
	// IndentThreshold is the minimum left-edge offset (px) that counts as an
	// indentation step. Zero means auto: one average character width.
	IndentThreshold float64 `yaml:"indent_threshold_px"`
	// SemanticSimilarityThreshold is the minimum lexical similarity for a
	// semantic_similarity edge.
	SemanticSimilarityThreshold float64 `yaml:"semantic_similarity_threshold"`
	// ConnectorConfidence is the fixed confidence for visual_connector edges.
	// Arrow tokens in OCR text are a weak signal, so this stays low.
	ConnectorConfidence float64 `yaml:"connector_confidence"`
}

// DefaultConfig returns the documented detection defaults.
func DefaultConfig() Config {
	return Config{
		SpatialProximityFactor:      2.0,
		SemanticSimilarityThreshold: 0.3,
		ConnectorConfidence:         0.5,
	}
}

// Validate rejects out-of-range thresholds before any data is processed.
func (c Config) Validate() error {
	if c.SpatialProximityThreshold < 0 {
		return fmt.Errorf("%w: spatial_proximity_threshold %v is negative", domain.ErrInvalidConfig, c.SpatialProximityThreshold)
	}
	if c.SpatialProximityFactor < 0 {
		return fmt.Errorf("%w: spatial_proximity_factor %v is negative", domain.ErrInvalidConfig, c.SpatialProximityFactor)
	}
	if c.IndentThreshold < 0 {
		return fmt.Errorf("%w: indent_threshold_px %v is negative", domain.ErrInvalidConfig, c.IndentThreshold)
	}
	if c.SemanticSimilarityThreshold < 0 || c.SemanticSimilarityThreshold > 1 {
		return fmt.Errorf("%w: semantic_similarity_threshold %v out of [0,1]", domain.ErrInvalidConfig, c.SemanticSimilarityThreshold)
	}
	if c.ConnectorConfidence < 0 || c.ConnectorConfidence > 1 {
		return fmt.Errorf("%w: connector_confidence %v out of [0,1]", domain.ErrInvalidConfig, c.ConnectorConfidence)
	}
	return nil
}
