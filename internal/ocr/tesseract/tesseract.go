// Package tesseract provides the local, zero-cost OCR provider backed by the
// gosseract client.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/ocr"
)

// Provider runs Tesseract over page images. A fresh client is created per
// page; the factory is swappable for tests.
type Provider struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract provider recognizing the given languages.
func New(languages []string) *Provider {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Provider{languages: languages, clientFactory: gosseract.NewClient}
}

func (p *Provider) Name() string { return "tesseract" }

// CostPerPage is zero: the engine runs locally.
func (p *Provider) CostPerPage() float64 { return 0 }

// Recognize runs OCR on one page image and returns line-level fragments.
func (p *Provider) Recognize(ctx context.Context, in ocr.Input) (domain.OCRResult, error) {
	select {
	case <-ctx.Done():
		return domain.OCRResult{}, ctx.Err()
	default:
	}

	c := p.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return domain.OCRResult{}, fmt.Errorf("%w: set image: %v", domain.ErrOCRProviderError, err)
	}
	if err := c.SetLanguage(p.languages...); err != nil {
		return domain.OCRResult{}, fmt.Errorf("%w: set languages: %v", domain.ErrOCRProviderError, err)
	}

	text, err := c.Text()
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("%w: recognize: %v", domain.ErrOCRProviderError, err)
	}

	fragments, confidence := lineFragments(c)
	return domain.OCRResult{
		Text:       strings.TrimSpace(text),
		Confidence: confidence,
		Fragments:  fragments,
	}, nil
}

// lineFragments extracts per-line boxes. Returns the mean line confidence on
// a 0..1 scale; gosseract reports 0..100.
func lineFragments(c *gosseract.Client) ([]domain.Fragment, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}

	fragments := make([]domain.Fragment, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		line := strings.TrimSpace(b.Word)
		if line == "" {
			continue
		}
		conf := b.Confidence / 100.0
		sum += conf
		fragments = append(fragments, domain.Fragment{
			Text: line,
			Box: domain.BoundingBox{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Confidence: conf,
		})
	}
	if len(fragments) == 0 {
		return nil, 0
	}
	return fragments, sum / float64(len(fragments))
}
