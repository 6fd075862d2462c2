// internal/blobcache/compression.go
package blobcache

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Stored values carry a one-byte marker so small blobs can skip
// compression entirely.
const (
	markerRaw  = 0x00
	markerZstd = 0x01
)

type compressor struct {
	minSize int
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCompressor(minSize int) (*compressor, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	return &compressor{minSize: minSize, encoder: enc, decoder: dec}, nil
}

func (c *compressor) encode(content []byte) []byte {
	if len(content) < c.minSize {
		return append([]byte{markerRaw}, content...)
	}
	return c.encoder.EncodeAll(content, []byte{markerZstd})
}

func (c *compressor) decode(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, fmt.Errorf("empty stored value")
	}
	switch stored[0] {
	case markerRaw:
		return stored[1:], nil
	case markerZstd:
		return c.decoder.DecodeAll(stored[1:], nil)
	default:
		return nil, fmt.Errorf("unknown storage marker: %#x", stored[0])
	}
}
