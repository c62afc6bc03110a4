// Package pipeline turns recognized note elements into organized document
// structures. The stages are pure functions of their input: the same
// elements always yield the same relationships, concepts, clusters and
// structures, which keeps results reproducible across runs.
package pipeline

import (
	"context"
	"time"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/pipeline/concept"
	"github.com/inkdex/inkdex/internal/pipeline/relate"
	"github.com/inkdex/inkdex/internal/pipeline/structure"
)

// Pipeline chains relationship detection, concept extraction, clustering
// and structure generation.
type Pipeline struct {
	detector  *relate.Detector
	extractor *concept.Extractor
	clusterer *concept.Clusterer
	generator *structure.Generator
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	detector, err := relate.NewDetector(cfg.Relationships)
	if err != nil {
		return nil, err
	}
	extractor, err := concept.NewExtractor(cfg.Concepts)
	if err != nil {
		return nil, err
	}
	clusterer, err := concept.NewClusterer(cfg.Concepts)
	if err != nil {
		return nil, err
	}
	generator, err := structure.NewGenerator(cfg.Structures)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		detector:  detector,
		extractor: extractor,
		clusterer: clusterer,
		generator: generator,
	}, nil
}

// Organize runs the full analysis over a note's elements. Empty input is
// not an error: the analysis simply has nothing in it. The stages do no
// I/O and emit no logs; callers observe around this method.
func (p *Pipeline) Organize(_ context.Context, noteID string, elements []domain.NoteElement) (domain.Analysis, error) {
	relationships := p.detector.Detect(elements)
	concepts := p.extractor.Extract(elements)
	clusters := p.clusterer.Cluster(concepts, relationships)
	structures := p.generator.Generate(elements, relationships, concepts, clusters)

	return domain.Analysis{
		NoteID:        noteID,
		Relationships: relationships,
		Concepts:      concepts,
		Clusters:      clusters,
		Structures:    structures,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
