package notefile

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

// Native page raster of the tablet.
const (
	pageWidth  = 1404
	pageHeight = 1872
)

// maxLayerSize rejects corrupt length fields.
const maxLayerSize = 4 << 20

// layerRecord locates one RLE-compressed ink layer inside the file.
type layerRecord struct {
	name      string // BGLAYER, MAINLAYER, LAYER1..LAYER3
	page      int    // 1-based
	dataStart int    // offset of the compressed bitmap
	size      int    // compressed byte count
}

var (
	tagLayerType   = []byte("<LAYERTYPE:")
	tagLayerName   = []byte("<LAYERNAME:")
	tagLayerBitmap = []byte("<LAYERBITMAP:")
)

// extractLayers walks the file's metadata tags. Each layer is announced by a
// <LAYERTYPE:><LAYERNAME:><LAYERBITMAP:addr> triplet; the bitmap address
// points at a 4-byte little-endian length followed by RLE data. Pages are
// delimited by MAINLAYER records: every layer belongs to the page of the
// next MAINLAYER at or after it.
func extractLayers(data []byte) []layerRecord {
	var layers []layerRecord
	page := 1
	pos := 0

	for pos < len(data)-len(tagLayerType) {
		typeStart := bytes.Index(data[pos:], tagLayerType)
		if typeStart == -1 {
			break
		}
		typeStart += pos
		pos = typeStart + 1

		typeEnd := bytes.IndexByte(data[typeStart:], '>')
		if typeEnd == -1 {
			continue
		}
		typeEnd += typeStart

		name, ok := tagValue(data, typeEnd, tagLayerName)
		if !ok {
			continue
		}
		nameEnd := bytes.IndexByte(data[typeEnd+1:], '>') + typeEnd + 1

		addrText, ok := tagValue(data, nameEnd, tagLayerBitmap)
		if !ok {
			continue
		}
		addr, err := strconv.Atoi(addrText)
		if err != nil || addr < 0 || addr+4 > len(data) {
			continue
		}

		size := int(binary.LittleEndian.Uint32(data[addr : addr+4]))
		if size <= 0 || size > maxLayerSize || addr+4+size > len(data) {
			continue
		}

		layers = append(layers, layerRecord{
			name:      name,
			page:      page,
			dataStart: addr + 4,
			size:      size,
		})
		if name == "MAINLAYER" {
			page++
		}
	}
	return layers
}

// tagValue finds the given tag within 200 bytes after offset and returns its
// value. The window bound keeps unrelated records from being stitched
// together.
func tagValue(data []byte, offset int, tag []byte) (string, bool) {
	if offset < 0 || offset >= len(data) {
		return "", false
	}
	window := data[offset:min(offset+200, len(data))]
	start := bytes.Index(window, tag)
	if start == -1 {
		return "", false
	}
	valueStart := offset + start + len(tag)
	end := bytes.IndexByte(data[valueStart:], '>')
	if end == -1 {
		return "", false
	}
	return string(data[valueStart : valueStart+end]), true
}
