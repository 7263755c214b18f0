package conditioner

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestBinarizeThreshold(t *testing.T) {
	// 2x1 image: one pixel just above the cutoff, one at it
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 129, G: 129, B: 129, A: 255}) // luminance 129 -> white
	src.Set(1, 0, color.NRGBA{R: 128, G: 128, B: 128, A: 255}) // luminance 128 -> black

	out := Binarize(encodePNG(t, src))
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	r0, g0, b0, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r0)
	assert.Equal(t, uint32(0xffff), g0)
	assert.Equal(t, uint32(0xffff), b0)

	r1, g1, b1, _ := img.At(1, 0).RGBA()
	assert.Equal(t, uint32(0), r1)
	assert.Equal(t, uint32(0), g1)
	assert.Equal(t, uint32(0), b1)
}

func TestBinarizeWeightedLuminance(t *testing.T) {
	// Pure green (0.587*255 ≈ 150) clears the cutoff, pure blue
	// (0.114*255 ≈ 29) does not, even though both have one channel at 255.
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{G: 255, A: 255})
	src.Set(1, 0, color.NRGBA{B: 255, A: 255})

	out := Binarize(encodePNG(t, src))
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	rg, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), rg, "green pixel should come out white")
	rb, _, _, _ := img.At(1, 0).RGBA()
	assert.Equal(t, uint32(0), rb, "blue pixel should come out black")
}

func TestBinarizeUndecodableInputReturnedAsIs(t *testing.T) {
	raw := []byte("not an image at all")
	out := Binarize(raw)
	assert.Equal(t, raw, out)
}

func TestBinarizeEmptyInput(t *testing.T) {
	out := Binarize(nil)
	assert.Nil(t, out)
}
