// Package imaging holds the pixel-level helpers around analysis: cropping a
// figure region out of a handout photo and bounding photo size before the
// model call.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"

	"print-bot/api/internal/analyze"
)

const (
	cropQuality = 85
	jpegQuality = 90

	// DefaultMaxPixels bounds what gets sent to the vision model.
	DefaultMaxPixels = 18_000_000
)

// RegionRect maps a fractional region onto a w×h pixel image. Origin is
// floored and clamped at zero; each side is at least one pixel and never
// leaves the image.
func RegionRect(r analyze.Region, w, h int) image.Rectangle {
	originX := max(0, int(math.Floor(r.XMin*float64(w))))
	originY := max(0, int(math.Floor(r.YMin*float64(h))))
	cw := min(w-originX, max(1, int(math.Floor((r.XMax-r.XMin)*float64(w)))))
	ch := min(h-originY, max(1, int(math.Floor((r.YMax-r.YMin)*float64(h)))))
	return image.Rect(originX, originY, originX+cw, originY+ch)
}

// CropRegion cuts the region out of the encoded image and returns it as JPEG.
func CropRegion(src []byte, region analyze.Region) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("crop: decode: %w", err)
	}
	b := img.Bounds()
	rect := RegionRect(region, b.Dx(), b.Dy()).Add(b.Min)

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: cropQuality}); err != nil {
		return nil, fmt.Errorf("crop: encode: %w", err)
	}
	return out.Bytes(), nil
}

// ScaleToFit re-encodes src as JPEG within the pixel budget, preserving
// aspect ratio. Images already within budget pass through untouched.
func ScaleToFit(src []byte, maxPixels int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("scale: decode: %w", err)
	}
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if maxPixels <= 0 || total <= maxPixels {
		return src, nil
	}

	scale := math.Sqrt(float64(maxPixels) / float64(total))
	newW := max(1, int(float64(b.Dx())*scale+0.5))
	newH := max(1, int(float64(b.Dy())*scale+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("scale: encode: %w", err)
	}
	return out.Bytes(), nil
}
