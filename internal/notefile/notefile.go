// Package notefile decodes note source files into page images for OCR.
//
// Two families of input are supported: plain raster images (PNG, JPEG),
// which pass through as a single page, and the proprietary tablet .note
// format, whose RLE-compressed ink layers are decoded and composited into
// one grayscale image per page.
package notefile

import (
	"bytes"
	"fmt"

	"github.com/inkdex/inkdex/internal/domain"
)

// Format identifies a supported input file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatNote Format = "note"
)

// noteSignature prefixes the tablet's native file format.
var noteSignature = []byte("noteSN_FILE_VER_")

var (
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

// DetectFormat sniffs the file's magic bytes.
func DetectFormat(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return FormatPNG, nil
	case bytes.HasPrefix(data, jpegMagic):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, noteSignature):
		return FormatNote, nil
	default:
		return "", fmt.Errorf("%w: unrecognized magic bytes", domain.ErrUnsupportedFormat)
	}
}

// Pages splits a source file into PNG- or JPEG-encoded page images, one per
// page. Raster inputs pass through unchanged; .note files are decoded,
// composited and re-encoded as PNG.
func Pages(data []byte) ([][]byte, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPNG, FormatJPEG:
		return [][]byte{data}, nil
	default:
		return notePages(data)
	}
}

func notePages(data []byte) ([][]byte, error) {
	layers := extractLayers(data)
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no ink layers found", domain.ErrUnsupportedFormat)
	}

	pageCount := 0
	for _, l := range layers {
		if l.page > pageCount {
			pageCount = l.page
		}
	}

	pages := make([][]byte, 0, pageCount)
	for p := 1; p <= pageCount; p++ {
		var pageLayers []layerRecord
		for _, l := range layers {
			if l.page == p {
				pageLayers = append(pageLayers, l)
			}
		}
		img := compositePage(data, pageLayers, pageWidth, pageHeight)
		encoded, err := encodePNG(scaleForOCR(img))
		if err != nil {
			return nil, fmt.Errorf("encode page %d: %w", p, err)
		}
		pages = append(pages, encoded)
	}
	return pages, nil
}
