// Package conditioner prepares badge photos for text recognition.
// Exhibit-floor captures arrive with glare, colored backgrounds, and lanyard
// shadows; a global luminance threshold strips most of that before OCR.
package conditioner

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// luminanceThreshold splits pixels into text (dark) and background (light).
const luminanceThreshold = 128

// Binarize converts a badge photo into a high-contrast black-and-white
// image encoded as PNG. Each pixel is mapped through perceptual luminance
// (0.299 R + 0.587 G + 0.114 B) and thresholded: above the cutoff becomes
// white, at or below becomes black.
//
// Binarize never fails: if the input cannot be decoded or the result cannot
// be encoded, the original bytes are returned untouched and the recognizer
// works with the raw capture instead.
func Binarize(data []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	out := threshold(img)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return data
	}
	return buf.Bytes()
}

// threshold performs the global luminance split on a decoded image.
func threshold(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bb>>8)
			var v uint8
			if lum > luminanceThreshold {
				v = 255
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
