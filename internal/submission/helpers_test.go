package submission_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"rental-inspection-backend/internal/models"
)

type flakyBucket struct {
	mu       sync.Mutex
	failures int
	puts     int
}

func (b *flakyBucket) PutObject(ctx context.Context, path string, data []byte, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts++
	if b.failures > 0 {
		b.failures--
		return errors.New("connection reset by peer")
	}
	return nil
}

type photoRecords struct {
	mu      sync.Mutex
	records []models.UploadedPhotoRecord
}

func (r *photoRecords) InsertPhotoRecord(ctx context.Context, record models.UploadedPhotoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func pngPhoto(t *testing.T, w, h int) models.RawPhoto {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return models.RawPhoto{
		Data:         buf.Bytes(),
		MediaType:    "image/png",
		OriginalSize: int64(buf.Len()),
		FileName:     "IMG_0001.png",
	}
}
