package organize

import (
	"context"

	"github.com/inkdex/inkdex/internal/domain"
)

// Repository defines the storage contract for notes and their analyses.
type Repository interface {
	GetNote(ctx context.Context, id string) (domain.Note, error)
	ListNotes(ctx context.Context, cursor string, limit int) (notes []domain.Note, nextCursor string, err error)
	DeleteNote(ctx context.Context, id string) error
	SaveAnalysis(ctx context.Context, a domain.Analysis) error
	GetAnalysis(ctx context.Context, noteID string) (domain.Analysis, error)
}

// Organizer runs the document-organization pipeline over note elements.
type Organizer interface {
	Organize(ctx context.Context, noteID string, elements []domain.NoteElement) (domain.Analysis, error)
}
