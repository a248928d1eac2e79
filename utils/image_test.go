package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestPrepareImageDownscales(t *testing.T) {
	data := encodeJPEG(t, 2048, 1024)
	out, err := PrepareImage(data, 512, 80)
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	b := decoded.Bounds()
	assert.Equal(t, 512, b.Dx())
	assert.Equal(t, 256, b.Dy())
}

func TestPrepareImageKeepsSmallImages(t *testing.T) {
	data := encodeJPEG(t, 300, 200)
	out, err := PrepareImage(data, 1024, 80)
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}

func TestPrepareImageAcceptsPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := PrepareImage(buf.Bytes(), 1024, 80)
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format, "output is always jpeg")
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	_, err := PrepareImage([]byte("not an image"), 1024, 80)
	assert.Error(t, err)

	_, err = PrepareImage(nil, 1024, 80)
	assert.Error(t, err)
}

func TestApplyOrientationRotations(t *testing.T) {
	// 2x1 image: red at (0,0), blue at (1,0).
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	// Orientation 6 is a 90 degree clockwise rotation: red ends up on top.
	rotated := applyOrientation(src, 6)
	b := rotated.Bounds()
	require.Equal(t, 1, b.Dx())
	require.Equal(t, 2, b.Dy())
	assert.Equal(t, red, rotated.At(0, 0))
	assert.Equal(t, blue, rotated.At(0, 1))

	// Orientation 8 rotates the other way: blue on top.
	rotated = applyOrientation(src, 8)
	assert.Equal(t, blue, rotated.At(0, 0))
	assert.Equal(t, red, rotated.At(0, 1))

	// Orientation 3 is a 180 flip, dimensions unchanged.
	flipped := applyOrientation(src, 3)
	require.Equal(t, 2, flipped.Bounds().Dx())
	assert.Equal(t, blue, flipped.At(0, 0))
	assert.Equal(t, red, flipped.At(1, 0))
}
