package domain

import "errors"

var (
	// ErrMalformedElement signals an element that cannot be constructed safely.
	ErrMalformedElement = errors.New("malformed element")
	// ErrInvalidConfig signals an out-of-range pipeline threshold.
	ErrInvalidConfig = errors.New("invalid pipeline config")
	// ErrNoteNotFound signals a missing note.
	ErrNoteNotFound = errors.New("note not found")
	// ErrAnalysisNotFound signals that a note has not been organized yet.
	ErrAnalysisNotFound = errors.New("analysis not found")
	// ErrUnsupportedFormat signals an input file the parser cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrOCRProviderError signals an OCR provider failure.
	ErrOCRProviderError = errors.New("ocr provider error")
	// ErrOCRBudgetExceeded signals an exhausted OCR cost budget.
	ErrOCRBudgetExceeded = errors.New("ocr budget exceeded")
	// ErrNoProviderAvailable signals that no OCR provider produced a result.
	ErrNoProviderAvailable = errors.New("no ocr provider available")
)
