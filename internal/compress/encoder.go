package compress

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"sync"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"rental-inspection-backend/internal/models"
)

const (
	defaultMaxIterations = 10
	defaultMinQuality    = 0.1
	qualityStep          = 0.1
)

var (
	bufferPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}
	pixPool    sync.Pool
)

// JPEGEncoder decodes any registered image format, scales it down to the
// preset's maximum dimension and encodes it as JPEG. While the output is
// above the preset's target size it lowers the quality and encodes again,
// up to MaxIterations times.
type JPEGEncoder struct {
	MaxIterations int
	MinQuality    float64
}

func NewJPEGEncoder() *JPEGEncoder {
	return &JPEGEncoder{MaxIterations: defaultMaxIterations, MinQuality: defaultMinQuality}
}

func (e *JPEGEncoder) Encode(ctx context.Context, photo models.RawPhoto, preset Preset) ([]byte, error) {
	if preset.MaxDimension <= 0 {
		return nil, fmt.Errorf("invalid preset: max dimension %d", preset.MaxDimension)
	}

	src, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	canvas, release := flatten(src, preset.MaxDimension)
	defer release()

	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	quality := preset.Quality
	maxIterations := e.MaxIterations
	if maxIterations < 1 {
		maxIterations = 1
	}
	minQuality := e.MinQuality
	if minQuality <= 0 {
		minQuality = defaultMinQuality
	}

	for i := 0; i < maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buf.Reset()
		if err := jpeg.Encode(buf, canvas, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}

		if int64(buf.Len()) <= preset.MaxBytes() || quality <= minQuality {
			break
		}
		quality = math.Max(minQuality, quality-qualityStep)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// jpegQuality maps a 0..1 quality to the 1..100 scale of image/jpeg.
func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// fitWithin returns the dimensions of a w x h image scaled down, aspect
// preserved, so that neither side exceeds maxDim. Smaller images keep their size.
func fitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		nh := int(math.Round(float64(h) * float64(maxDim) / float64(w)))
		return maxDim, max(nh, 1)
	}
	nw := int(math.Round(float64(w) * float64(maxDim) / float64(h)))
	return max(nw, 1), maxDim
}

// flatten draws src onto an opaque white canvas no larger than maxDim on
// either side. The returned func hands the canvas pixels back to the pool.
func flatten(src image.Image, maxDim int) (*image.RGBA, func()) {
	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxDim)

	canvas := acquireCanvas(w, h)
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Over)
	} else {
		xdraw.CatmullRom.Scale(canvas, canvas.Bounds(), src, b, xdraw.Over, nil)
	}

	return canvas, func() {
		pix := canvas.Pix
		canvas.Pix = nil
		pixPool.Put(&pix)
	}
}

func acquireCanvas(w, h int) *image.RGBA {
	need := 4 * w * h
	var pix []uint8
	if p, ok := pixPool.Get().(*[]uint8); ok && cap(*p) >= need {
		pix = (*p)[:need]
	} else {
		pix = make([]uint8, need)
	}
	return &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
}
