package domain

import (
	"fmt"
	"math"
	"strings"
)

// ElementType is an optional categorical tag for a note element.
type ElementType string

const (
	ElementText     ElementType = "text"
	ElementHeading  ElementType = "heading"
	ElementListItem ElementType = "list_item"
)

// BoundingBox is an axis-aligned rectangle in page-pixel coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the box center point.
func (b BoundingBox) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Distance returns the Euclidean distance between two box centers.
func (b BoundingBox) Distance(o BoundingBox) float64 {
	x1, y1 := b.Center()
	x2, y2 := o.Center()
	return math.Hypot(x2-x1, y2-y1)
}

// IsZero reports whether the box has no position or extent.
func (b BoundingBox) IsZero() bool {
	return b.X == 0 && b.Y == 0 && b.Width == 0 && b.Height == 0
}

// NoteElement is one OCR-extracted text fragment. Immutable after creation;
// every downstream pipeline stage consumes elements read-only.
type NoteElement struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Box        BoundingBox `json:"bounding_box"`
	Confidence float64     `json:"confidence"`
	PageIndex  int         `json:"page_index"`
	Type       ElementType `json:"element_type,omitempty"`
}

// NewElement validates and creates a NoteElement. A zero bounding box is
// legal (geometric detectors score it low instead of failing); negative or
// non-finite geometry and missing IDs are not.
func NewElement(id, text string, box BoundingBox, confidence float64, pageIndex int) (NoteElement, error) {
	if id == "" {
		return NoteElement{}, fmt.Errorf("%w: empty id", ErrMalformedElement)
	}
	for _, v := range []float64{box.X, box.Y, box.Width, box.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NoteElement{}, fmt.Errorf("%w: non-finite bounding box for %s", ErrMalformedElement, id)
		}
	}
	if box.Width < 0 || box.Height < 0 {
		return NoteElement{}, fmt.Errorf("%w: negative box extent for %s", ErrMalformedElement, id)
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return NoteElement{}, fmt.Errorf("%w: confidence %v out of [0,1] for %s", ErrMalformedElement, confidence, id)
	}
	if pageIndex < 0 {
		return NoteElement{}, fmt.Errorf("%w: negative page index for %s", ErrMalformedElement, id)
	}
	return NoteElement{
		ID:         id,
		Text:       text,
		Box:        box,
		Confidence: confidence,
		PageIndex:  pageIndex,
	}, nil
}

// Empty reports whether the element carries no usable text.
func (e NoteElement) Empty() bool {
	return strings.TrimSpace(e.Text) == ""
}
