package notefile

import (
	"bytes"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// ocrTargetWidth is the page width handed to OCR. Full tablet resolution
// buys no accuracy and inflates cloud payloads.
const ocrTargetWidth = 1024

// layerOrder fixes composite order, background first.
var layerOrder = []string{"BGLAYER", "MAINLAYER", "LAYER1", "LAYER2", "LAYER3"}

// compositePage decodes a page's layers and flattens them onto a white
// canvas. Ink pixels from later layers override earlier ones; background
// pixels (255) are transparent.
func compositePage(data []byte, layers []layerRecord, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	byName := make(map[string]layerRecord, len(layers))
	for _, l := range layers {
		byName[l.name] = l
	}

	for _, name := range layerOrder {
		l, ok := byName[name]
		if !ok {
			continue
		}
		decoded := decodeRattaRLE(data[l.dataStart:l.dataStart+l.size], width, height)
		for i, v := range decoded {
			if v < 255 {
				img.Pix[i] = v
			}
		}
	}
	return img
}

// scaleForOCR downscales a page to the OCR target width, preserving aspect
// ratio. Pages at or below the target pass through.
func scaleForOCR(img *image.Gray) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= ocrTargetWidth {
		return img
	}
	targetHeight := bounds.Dy() * ocrTargetWidth / bounds.Dx()
	scaled := image.NewGray(image.Rect(0, 0, ocrTargetWidth, targetHeight))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Over, nil)
	return scaled
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
