package ingest

import (
	"context"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/ocr"
)

// Repository defines the storage contract for ingested notes.
type Repository interface {
	SaveNote(ctx context.Context, note domain.Note) (created bool, err error)
}

// Recognizer extracts text from one page image.
type Recognizer interface {
	Recognize(ctx context.Context, in ocr.Input, q ocr.Quality) (domain.OCRResult, error)
}

// Decoder splits a source file into encoded page images.
type Decoder interface {
	Pages(data []byte) ([][]byte, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) ([][]byte, error)

func (f DecoderFunc) Pages(data []byte) ([][]byte, error) { return f(data) }
