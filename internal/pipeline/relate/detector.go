package relate

import (
	"math"
	"sort"
	"strconv"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/textutil"
)

// Detector discovers relationships between note elements. Strategies run as
// independent passes over the same element list; overlapping edges from
// different strategies are evidence, not an error.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with a validated config.
func NewDetector(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg}, nil
}

// Detect returns every relationship the configured strategies find. Elements
// with empty or whitespace-only text never appear as source or target. Zero
// or one usable elements yield an empty list, never an error.
func (d *Detector) Detect(elements []domain.NoteElement) []domain.Relationship {
	usable := make([]domain.NoteElement, 0, len(elements))
	for _, el := range elements {
		if !el.Empty() {
			usable = append(usable, el)
		}
	}
	if len(usable) < 2 {
		return nil
	}

	var rels []domain.Relationship
	rels = append(rels, d.detectSpatial(usable)...)
	rels = append(rels, d.detectIndent(usable)...)
	rels = append(rels, d.detectNumbering(usable)...)
	rels = append(rels, d.detectConnectors(usable)...)
	rels = append(rels, d.detectSemantic(usable)...)
	return rels
}

// detectSpatial links element pairs on the same page whose center distance is
// below the threshold; confidence decays linearly with distance. Pairs with
// identical bounding boxes are duplicate OCR fragments and are skipped.
func (d *Detector) detectSpatial(elements []domain.NoteElement) []domain.Relationship {
	byPage := groupByPage(elements)

	var rels []domain.Relationship
	for _, page := range byPage {
		threshold := d.cfg.SpatialProximityThreshold
		if threshold <= 0 {
			m := medianHeight(page)
			if m <= 0 {
				continue
			}
			threshold = d.cfg.SpatialProximityFactor * m
		}
		if threshold <= 0 {
			continue
		}

		for i := 0; i < len(page); i++ {
			for j := i + 1; j < len(page); j++ {
				a, b := page[i], page[j]
				if a.Box == b.Box {
					continue
				}
				dist := a.Box.Distance(b.Box)
				if dist >= threshold {
					continue
				}
				conf := 1 - dist/threshold
				if conf <= 0 {
					continue
				}
				rels = append(rels, domain.Relationship{
					SourceID:   a.ID,
					TargetID:   b.ID,
					Type:       domain.RelSpatialProximity,
					Confidence: conf,
					Metadata: map[string]string{
						"distance_px":  formatFloat(dist),
						"threshold_px": formatFloat(threshold),
					},
				})
			}
		}
	}
	return rels
}

// detectIndent walks elements in reading order and links consecutive elements
// where the lower one's left edge sits further right than the upper one's by
// more than the indent threshold. The less-indented element is the parent.
// Confidence reflects how cleanly the offset matches a multiple of the base
// indent unit.
func (d *Detector) detectIndent(elements []domain.NoteElement) []domain.Relationship {
	unit := d.cfg.IndentThreshold
	if unit <= 0 {
		unit = averageCharWidth(elements)
	}
	if unit <= 0 {
		return nil
	}

	ordered := readingOrder(elements)

	var rels []domain.Relationship
	for i := 1; i < len(ordered); i++ {
		upper, lower := ordered[i-1], ordered[i]
		if upper.PageIndex != lower.PageIndex {
			continue
		}
		offset := lower.Box.X - upper.Box.X
		if offset <= unit {
			continue
		}

		steps := offset / unit
		nearest := math.Round(steps)
		if nearest < 1 {
			nearest = 1
		}
		// deviation is 0 for a clean multiple of the unit, 0.5 halfway between.
		deviation := math.Abs(steps - nearest)
		conf := clamp01(0.9 - 1.2*deviation)
		if conf < 0.3 {
			conf = 0.3
		}

		rels = append(rels, domain.Relationship{
			SourceID:   upper.ID,
			TargetID:   lower.ID,
			Type:       domain.RelHierarchyIndent,
			Confidence: conf,
			Metadata: map[string]string{
				"offset_px": formatFloat(offset),
				"unit_px":   formatFloat(unit),
				"depth":     strconv.Itoa(int(nearest)),
			},
		})
	}
	return rels
}

// detectNumbering links consecutive list-marked elements that share a marker
// style with increasing ordinals. Explicit markers are the strongest signal
// the detector sees, so confidence sits near 1.
func (d *Detector) detectNumbering(elements []domain.NoteElement) []domain.Relationship {
	type marked struct {
		el domain.NoteElement
		m  textutil.Marker
	}

	ordered := readingOrder(elements)
	var seq []marked
	for _, el := range ordered {
		if m := textutil.ParseMarker(el.Text); m.Style != textutil.MarkerNone {
			seq = append(seq, marked{el: el, m: m})
		}
	}

	var rels []domain.Relationship
	for i := 1; i < len(seq); i++ {
		prev, cur := seq[i-1], seq[i]
		if prev.el.PageIndex != cur.el.PageIndex || prev.m.Style != cur.m.Style {
			continue
		}

		var conf float64
		switch {
		case prev.m.Style == textutil.MarkerBullet:
			conf = 0.9
		case cur.m.Index == prev.m.Index+1:
			conf = 0.95
		case cur.m.Index > prev.m.Index:
			conf = 0.85
		default:
			continue
		}

		rels = append(rels, domain.Relationship{
			SourceID:   prev.el.ID,
			TargetID:   cur.el.ID,
			Type:       domain.RelHierarchyNumber,
			Confidence: conf,
			Metadata: map[string]string{
				"marker_style": string(cur.m.Style),
				"index":        strconv.Itoa(cur.m.Index),
			},
		})
	}
	return rels
}

// detectConnectors finds elements that are nothing but an arrow token and
// links the nearest elements on either side of the arrow. OCR rarely
// transcribes hand-drawn arrows as text, so this is best-effort with a low
// fixed confidence.
func (d *Detector) detectConnectors(elements []domain.NoteElement) []domain.Relationship {
	var rels []domain.Relationship
	for _, el := range elements {
		if !textutil.IsConnector(el.Text) {
			continue
		}

		dir := textutil.ConnectorDirection(el.Text)
		before, after := nearestNeighbors(el, elements, dir)
		if before == nil || after == nil {
			continue
		}

		src, dst := before, after
		if dir < 0 {
			src, dst = after, before
		}
		rels = append(rels, domain.Relationship{
			SourceID:   src.ID,
			TargetID:   dst.ID,
			Type:       domain.RelVisualConnector,
			Confidence: d.cfg.ConnectorConfidence,
			Metadata:   map[string]string{"connector": el.Text},
		})
	}
	return rels
}

// detectSemantic links element pairs whose term-frequency cosine similarity
// clears the threshold. Bag-of-words only, no model calls.
func (d *Detector) detectSemantic(elements []domain.NoteElement) []domain.Relationship {
	freqs := make([]map[string]int, len(elements))
	for i, el := range elements {
		freqs[i] = textutil.TermFrequencies(el.Text)
	}

	var rels []domain.Relationship
	for i := 0; i < len(elements); i++ {
		for j := i + 1; j < len(elements); j++ {
			sim := textutil.CosineSimilarity(freqs[i], freqs[j])
			if sim < d.cfg.SemanticSimilarityThreshold || sim <= 0 {
				continue
			}
			rels = append(rels, domain.Relationship{
				SourceID:   elements[i].ID,
				TargetID:   elements[j].ID,
				Type:       domain.RelSemanticSimilar,
				Confidence: sim,
				Metadata:   map[string]string{"similarity": formatFloat(sim)},
			})
		}
	}
	return rels
}

// nearestNeighbors picks the closest non-connector element on each side of an
// arrow element. Horizontal arrows split left/right, vertical and unknown
// split above/below. Ties break on element ID for determinism.
func nearestNeighbors(arrow domain.NoteElement, elements []domain.NoteElement, dir int) (before, after *domain.NoteElement) {
	ax, ay := arrow.Box.Center()
	var bestBefore, bestAfter *domain.NoteElement
	var distBefore, distAfter float64

	for i := range elements {
		el := &elements[i]
		if el.ID == arrow.ID || el.PageIndex != arrow.PageIndex || textutil.IsConnector(el.Text) {
			continue
		}
		cx, cy := el.Box.Center()
		dist := arrow.Box.Distance(el.Box)

		onBefore := cy < ay
		if dir != 0 {
			onBefore = cx < ax
		}
		if onBefore {
			if bestBefore == nil || dist < distBefore || (dist == distBefore && el.ID < bestBefore.ID) {
				bestBefore, distBefore = el, dist
			}
		} else {
			if bestAfter == nil || dist < distAfter || (dist == distAfter && el.ID < bestAfter.ID) {
				bestAfter, distAfter = el, dist
			}
		}
	}
	return bestBefore, bestAfter
}

// readingOrder sorts elements top-to-bottom per page, then left-to-right,
// with the element ID as the final tie-break.
func readingOrder(elements []domain.NoteElement) []domain.NoteElement {
	out := make([]domain.NoteElement, len(elements))
	copy(out, elements)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PageIndex != b.PageIndex {
			return a.PageIndex < b.PageIndex
		}
		if a.Box.Y != b.Box.Y {
			return a.Box.Y < b.Box.Y
		}
		if a.Box.X != b.Box.X {
			return a.Box.X < b.Box.X
		}
		return a.ID < b.ID
	})
	return out
}

func groupByPage(elements []domain.NoteElement) [][]domain.NoteElement {
	index := make(map[int]int)
	var pages [][]domain.NoteElement
	for _, el := range elements {
		i, ok := index[el.PageIndex]
		if !ok {
			i = len(pages)
			index[el.PageIndex] = i
			pages = append(pages, nil)
		}
		pages[i] = append(pages[i], el)
	}
	return pages
}

// medianHeight returns the lower median of the nonzero element heights.
func medianHeight(elements []domain.NoteElement) float64 {
	heights := make([]float64, 0, len(elements))
	for _, el := range elements {
		if el.Box.Height > 0 {
			heights = append(heights, el.Box.Height)
		}
	}
	if len(heights) == 0 {
		return 0
	}
	sort.Float64s(heights)
	return heights[(len(heights)-1)/2]
}

// averageCharWidth estimates one character width from box width over rune
// count, averaged across elements that have both.
func averageCharWidth(elements []domain.NoteElement) float64 {
	var sum float64
	var n int
	for _, el := range elements {
		runes := len([]rune(el.Text))
		if runes == 0 || el.Box.Width <= 0 {
			continue
		}
		sum += el.Box.Width / float64(runes)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
