package models

import "strings"

// RawPhoto is a photo as received from the device, before compression.
type RawPhoto struct {
	Data         []byte
	MediaType    string
	OriginalSize int64
	FileName     string
}

// IsImage reports whether the declared media type is an image type.
func (p RawPhoto) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(p.MediaType)), "image/")
}

// CompressedPhoto is the JPEG artifact produced from a RawPhoto. It is
// uploaded once and then released.
type CompressedPhoto struct {
	Data             []byte
	Size             int64
	FileName         string
	ContentType      string
	CompressionRatio float64
	Preset           int
}

// Release drops the encoded bytes so the buffer can be collected.
func (p *CompressedPhoto) Release() {
	if p == nil {
		return
	}
	p.Data = nil
}

// Released reports whether Release has been called.
func (p *CompressedPhoto) Released() bool {
	return p == nil || p.Data == nil
}
