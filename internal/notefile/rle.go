package notefile

// RATTA_RLE color codes. Background is transparent at composite time, not
// white ink.
const (
	colorBlack          = 0x61
	colorBackground     = 0x62
	colorDarkGray       = 0x63
	colorGray           = 0x64
	colorWhite          = 0x65
	colorMarkerBlack    = 0x66
	colorMarkerDarkGray = 0x67
	colorMarkerGray     = 0x68
)

const (
	specialLengthMarker = 0xFF
	specialLength       = 0x4000 // 16384 pixels
)

// grayValue maps a color code to an 8-bit gray level.
func grayValue(code byte) uint8 {
	switch code {
	case colorBlack, colorMarkerBlack:
		return 0
	case colorDarkGray, colorMarkerDarkGray:
		return 64
	case colorGray, colorMarkerGray:
		return 128
	default: // background, white, unknown
		return 255
	}
}

// decodeRattaRLE expands one compressed layer into a row-major gray bitmap of
// width*height pixels. The stream is (colorcode, length) byte pairs; a length
// with the high bit set is the first half of a multi-byte run and is held
// until the next pair. 0xFF is a fixed 16384-pixel run. A held pair left at
// end of stream is a tail run whose length is fitted to the remaining pixels.
func decodeRattaRLE(compressed []byte, width, height int) []uint8 {
	expected := width * height
	out := make([]uint8, expected)
	for i := range out {
		out[i] = 255
	}
	if len(compressed) < 2 {
		return out
	}

	fill := func(pixel int, code byte, length int) int {
		color := grayValue(code)
		end := pixel + length
		if end > expected {
			end = expected
		}
		for ; pixel < end; pixel++ {
			out[pixel] = color
		}
		return pixel
	}

	var (
		pixel    int
		holding  bool
		heldCode byte
		heldLen  byte
	)

	for i := 0; i+1 < len(compressed) && pixel < expected; i += 2 {
		code := compressed[i]
		lengthByte := compressed[i+1]
		pushed := false

		if holding {
			holding = false
			if code == heldCode {
				// Continuation: combine both bytes into one long run.
				length := 1 + int(lengthByte) + ((int(heldLen&0x7F) + 1) << 7)
				pixel = fill(pixel, code, length)
				pushed = true
			} else {
				// The held pair was a complete run after all.
				pixel = fill(pixel, heldCode, (int(heldLen&0x7F)+1)<<7)
			}
		}

		if !pushed {
			switch {
			case lengthByte == specialLengthMarker:
				pixel = fill(pixel, code, specialLength)
			case lengthByte&0x80 != 0:
				holding = true
				heldCode = code
				heldLen = lengthByte
			default:
				pixel = fill(pixel, code, int(lengthByte)+1)
			}
		}
	}

	if holding && pixel < expected {
		length := adjustTailLength(heldLen, expected-pixel)
		if length > 0 {
			fill(pixel, heldCode, length)
		}
	}
	return out
}

// adjustTailLength picks the largest power-of-two expansion of a dangling
// multi-byte length that still fits in the remaining gap.
func adjustTailLength(tail byte, gap int) int {
	for shift := 7; shift >= 0; shift-- {
		length := (int(tail&0x7F) + 1) << shift
		if length <= gap {
			return length
		}
	}
	return 0
}
