package compress

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"rental-inspection-backend/internal/models"
)

const (
	megabyte = 1 << 20

	// DefaultMaxInputBytes bounds the memory a single decode may take.
	DefaultMaxInputBytes = 2 * megabyte

	OutputContentType = "image/jpeg"
	OutputExtension   = ".jpg"
)

// Preset is one rung of the compression ladder.
type Preset struct {
	MaxSizeMB    float64
	MaxDimension int
	Quality      float64
}

// MaxBytes is the target output size of the preset.
func (p Preset) MaxBytes() int64 {
	return int64(p.MaxSizeMB * megabyte)
}

// DefaultLadder goes from the highest fidelity preset to the most aggressive one.
var DefaultLadder = []Preset{
	{MaxSizeMB: 0.5, MaxDimension: 1920, Quality: 0.8},
	{MaxSizeMB: 0.8, MaxDimension: 1280, Quality: 0.6},
	{MaxSizeMB: 1.2, MaxDimension: 800, Quality: 0.4},
}

// Encoder turns a raw photo into JPEG bytes for one preset.
type Encoder interface {
	Encode(ctx context.Context, photo models.RawPhoto, preset Preset) ([]byte, error)
}

type Compressor struct {
	encoder       Encoder
	ladder        []Preset
	maxInputBytes int64
	logger        zerolog.Logger
}

// NewCompressor builds a compressor. A nil ladder selects DefaultLadder and a
// non-positive maxInputBytes selects DefaultMaxInputBytes.
func NewCompressor(encoder Encoder, ladder []Preset, maxInputBytes int64, logger zerolog.Logger) *Compressor {
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}
	if maxInputBytes <= 0 {
		maxInputBytes = DefaultMaxInputBytes
	}
	return &Compressor{
		encoder:       encoder,
		ladder:        ladder,
		maxInputBytes: maxInputBytes,
		logger:        logger.With().Str("component", "compressor").Logger(),
	}
}

// Compress validates the photo and walks the ladder until one preset encodes
// without error. A preset that encodes is final even if its output is still
// above the preset's target size.
func (c *Compressor) Compress(ctx context.Context, raw models.RawPhoto) (*models.CompressedPhoto, error) {
	if !raw.IsImage() {
		return nil, fmt.Errorf("%w: %q is not an image (media type %q)", ErrInvalidInput, raw.FileName, raw.MediaType)
	}

	originalSize := raw.OriginalSize
	if originalSize <= 0 {
		originalSize = int64(len(raw.Data))
	}
	if originalSize > c.maxInputBytes {
		return nil, fmt.Errorf("%w: %q is %.2fMB, maximum is %.2fMB", ErrInputTooLarge, raw.FileName,
			float64(originalSize)/megabyte, float64(c.maxInputBytes)/megabyte)
	}

	log := c.logger.With().Str("file", raw.FileName).Int64("original_size", originalSize).Logger()

	var lastErr error
	for i, preset := range c.ladder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debug().
			Int("attempt", i+1).
			Int("max_dimension", preset.MaxDimension).
			Float64("quality", preset.Quality).
			Msg("Compressing photo")

		data, err := c.encoder.Encode(ctx, raw, preset)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", i+1).Int("presets", len(c.ladder)).Msg("Compression attempt failed")
			continue
		}

		size := int64(len(data))
		photo := &models.CompressedPhoto{
			Data:             data,
			Size:             size,
			FileName:         NormalizeFileName(raw.FileName),
			ContentType:      OutputContentType,
			CompressionRatio: 1 - float64(size)/float64(originalSize),
			Preset:           i + 1,
		}

		log.Info().
			Int("attempt", i+1).
			Int64("compressed_size", size).
			Float64("ratio", photo.CompressionRatio).
			Bool("over_target", size > preset.MaxBytes()).
			Msg("Photo compressed")

		return photo, nil
	}

	return nil, &CompressionError{FileName: raw.FileName, Attempts: len(c.ladder), Err: lastErr}
}

// NormalizeFileName swaps the extension of name for the output extension.
func NormalizeFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "photo"
	}
	return base + OutputExtension
}
