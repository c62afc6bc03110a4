package organize

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/logger"
	"github.com/inkdex/inkdex/internal/metrics"
	"github.com/inkdex/inkdex/internal/pipeline/structure"
)

// Service runs the organization pipeline over stored notes and serves the
// results.
type Service struct {
	repo      Repository
	organizer Organizer
}

// New creates an organize service.
func New(repo Repository, organizer Organizer) *Service {
	return &Service{repo: repo, organizer: organizer}
}

// Organize loads a note, runs the pipeline and persists the analysis.
// Re-running replaces the previous analysis.
func (s *Service) Organize(ctx context.Context, noteID string) (domain.Analysis, error) {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("get note: %w", err)
	}

	start := time.Now()
	analysis, err := s.organizer.Organize(ctx, noteID, note.Elements)
	metrics.OrganizeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotesOrganizedTotal.WithLabelValues("error").Inc()
		return domain.Analysis{}, fmt.Errorf("organize note: %w", err)
	}
	metrics.NotesOrganizedTotal.WithLabelValues("success").Inc()
	for _, st := range analysis.Structures {
		metrics.StructuresGeneratedTotal.WithLabelValues(string(st.Type)).Inc()
	}

	if err := s.repo.SaveAnalysis(ctx, analysis); err != nil {
		return domain.Analysis{}, fmt.Errorf("save analysis: %w", err)
	}

	logger.FromContext(ctx).Info("note organized",
		zap.String("note_id", noteID),
		zap.Int("elements", len(note.Elements)),
		zap.Int("relationships", len(analysis.Relationships)),
		zap.Int("concepts", len(analysis.Concepts)),
		zap.Int("clusters", len(analysis.Clusters)),
		zap.Int("structures", len(analysis.Structures)),
		zap.Duration("took", time.Since(start)))
	return analysis, nil
}

// GetNote returns a stored note.
func (s *Service) GetNote(ctx context.Context, noteID string) (domain.Note, error) {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return domain.Note{}, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// ListNotes returns a page of stored notes.
func (s *Service) ListNotes(ctx context.Context, cursor string, limit int) ([]domain.Note, string, error) {
	notes, next, err := s.repo.ListNotes(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list notes: %w", err)
	}
	return notes, next, nil
}

// DeleteNote removes a note and its analysis.
func (s *Service) DeleteNote(ctx context.Context, noteID string) error {
	if err := s.repo.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// GetAnalysis returns the stored analysis for a note.
func (s *Service) GetAnalysis(ctx context.Context, noteID string) (domain.Analysis, error) {
	a, err := s.repo.GetAnalysis(ctx, noteID)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("get analysis: %w", err)
	}
	return a, nil
}

// Export renders one generated structure as markdown. An empty structureType
// exports the top-ranked structure.
func (s *Service) Export(ctx context.Context, noteID string, structureType domain.StructureType) (string, error) {
	a, err := s.repo.GetAnalysis(ctx, noteID)
	if err != nil {
		return "", fmt.Errorf("get analysis: %w", err)
	}
	if len(a.Structures) == 0 {
		return "", fmt.Errorf("note %s: %w", noteID, domain.ErrAnalysisNotFound)
	}

	if structureType == "" {
		return structure.ExportMarkdown(a.Structures[0]), nil
	}
	st, ok := a.StructureByType(structureType)
	if !ok {
		return "", fmt.Errorf("no %s structure for note %s: %w", structureType, noteID, domain.ErrAnalysisNotFound)
	}
	return structure.ExportMarkdown(st), nil
}
