package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

// PrepareImage gets a photo ready for an upstream vision call: orientation
// corrected, longest side capped at maxDim, re-encoded as JPEG at the given
// quality. Bounding size and quality here bounds upstream cost and latency.
func PrepareImage(data []byte, maxDim, quality int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	src = applyOrientation(src, readOrientation(data))

	if maxDim > 0 {
		src = downscale(src, maxDim)
	}

	if quality <= 0 || quality > 100 {
		quality = 80
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// readOrientation pulls the EXIF orientation tag; 1 (no transform) when the
// image carries no usable EXIF block.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

func downscale(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return src
	}
	scale := float64(maxDim) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// applyOrientation maps the eight EXIF orientation cases onto pixel
// transforms so the upstream provider always sees an upright image.
func applyOrientation(src image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return transformPixels(src, func(w, h, x, y int) (int, int) { return w - 1 - x, y })
	case 3:
		return transformPixels(src, func(w, h, x, y int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4:
		return transformPixels(src, func(w, h, x, y int) (int, int) { return x, h - 1 - y })
	case 5:
		return transposePixels(src, func(w, h, x, y int) (int, int) { return y, x })
	case 6:
		return transposePixels(src, func(w, h, x, y int) (int, int) { return y, h - 1 - x })
	case 7:
		return transposePixels(src, func(w, h, x, y int) (int, int) { return w - 1 - y, h - 1 - x })
	case 8:
		return transposePixels(src, func(w, h, x, y int) (int, int) { return w - 1 - y, x })
	default:
		return src
	}
}

// transformPixels keeps width/height; the mapper returns the source pixel
// for each destination pixel.
func transformPixels(src image.Image, from func(w, h, x, y int) (int, int)) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := from(w, h, x, y)
			dst.Set(x, y, src.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}

// transposePixels swaps width and height (the rotated cases).
func transposePixels(src image.Image, from func(w, h, x, y int) (int, int)) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			sx, sy := from(w, h, x, y)
			dst.Set(x, y, src.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}
