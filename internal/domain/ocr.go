package domain

// Fragment is one positioned piece of recognized text inside a page.
type Fragment struct {
	Text       string      `json:"text"`
	Box        BoundingBox `json:"bounding_box"`
	Confidence float64     `json:"confidence"`
}

// OCRResult is the standardized output of any OCR provider for one page image.
type OCRResult struct {
	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
	Provider   string     `json:"provider"`
	Cost       float64    `json:"cost"`
	Fragments  []Fragment `json:"fragments"`
}

// ElementsFromOCR maps OCR fragments 1:1 to note elements for one page.
// Fragment order is preserved; ids come from the supplied generator so callers
// control determinism in tests.
func ElementsFromOCR(res OCRResult, pageIndex int, nextID func() string) ([]NoteElement, error) {
	elements := make([]NoteElement, 0, len(res.Fragments))
	for _, f := range res.Fragments {
		el, err := NewElement(nextID(), f.Text, f.Box, f.Confidence, pageIndex)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}
