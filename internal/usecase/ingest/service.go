package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/logger"
	"github.com/inkdex/inkdex/internal/ocr"

	"go.uber.org/zap"
)

// Service turns uploaded note files into persisted notes with OCR elements.
type Service struct {
	repo    Repository
	decoder Decoder
	ocr     Recognizer
	newID   func() string
}

// New creates an ingest service.
func New(repo Repository, decoder Decoder, recognizer Recognizer) *Service {
	return &Service{
		repo:    repo,
		decoder: decoder,
		ocr:     recognizer,
		newID:   uuid.NewString,
	}
}

// WithIDGenerator overrides element/note id generation. Tests use this to get
// deterministic ids.
func (s *Service) WithIDGenerator(newID func() string) *Service {
	s.newID = newID
	return s
}

// Ingest decodes a source file, runs every page through OCR and persists the
// resulting note.
func (s *Service) Ingest(ctx context.Context, filename string, data []byte, quality ocr.Quality) (domain.Note, error) {
	pages, err := s.decoder.Pages(data)
	if err != nil {
		return domain.Note{}, fmt.Errorf("decode pages: %w", err)
	}

	var (
		elements  []domain.NoteElement
		totalCost float64
		providers = make(map[string]struct{})
		provider  string
	)
	for i, page := range pages {
		res, err := s.ocr.Recognize(ctx, ocr.Input{Image: page, PageIndex: i}, quality)
		if err != nil {
			return domain.Note{}, fmt.Errorf("recognize page %d: %w", i, err)
		}

		pageElements, err := domain.ElementsFromOCR(res, i, s.newID)
		if err != nil {
			return domain.Note{}, fmt.Errorf("map page %d elements: %w", i, err)
		}
		elements = append(elements, pageElements...)
		totalCost += res.Cost
		providers[res.Provider] = struct{}{}
		provider = res.Provider
	}
	if len(providers) > 1 {
		provider = "mixed"
	}

	note := domain.Note{
		ID:         s.newID(),
		SourceFile: filename,
		PageCount:  len(pages),
		Provider:   provider,
		Cost:       totalCost,
		Elements:   elements,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.repo.SaveNote(ctx, note); err != nil {
		return domain.Note{}, fmt.Errorf("save note: %w", err)
	}

	logger.FromContext(ctx).Info("note ingested",
		zap.String("note_id", note.ID),
		zap.String("source_file", filename),
		zap.Int("pages", note.PageCount),
		zap.Int("elements", len(elements)),
		zap.String("provider", provider),
		zap.Float64("cost", totalCost),
	)
	return note, nil
}
