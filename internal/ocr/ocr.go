// Package ocr routes handwritten page images to recognition providers. A
// free local engine handles the bulk of the work; a paid vision model is
// pulled in when the requested quality mode calls for it and the spend
// budget allows.
package ocr

import (
	"context"
	"fmt"

	"github.com/inkdex/inkdex/internal/domain"
)

// Input is one page image to recognize.
type Input struct {
	// Image is the encoded page bitmap (PNG or JPEG).
	Image []byte
	// PageIndex is the zero-based page position within the note.
	PageIndex int
}

// Provider recognizes text on a page image.
type Provider interface {
	Name() string
	// CostPerPage is the provider's price per recognized page in dollars.
	// Zero means free.
	CostPerPage() float64
	Recognize(ctx context.Context, in Input) (domain.OCRResult, error)
}

// Quality selects the routing trade-off between cost and accuracy.
type Quality string

const (
	// QualityFast uses only the free local engine.
	QualityFast Quality = "fast"
	// QualityBalanced runs the local engine and escalates low-confidence
	// pages to the paid provider.
	QualityBalanced Quality = "balanced"
	// QualityPremium prefers the paid provider outright.
	QualityPremium Quality = "premium"
)

// ParseQuality validates a quality mode string.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityFast, QualityBalanced, QualityPremium:
		return Quality(s), nil
	case "":
		return QualityBalanced, nil
	}
	return "", fmt.Errorf("unknown quality mode %q", s)
}
