package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// minSize is the smallest payload worth compressing.
const minSize = 128

// Every encoded payload starts with one of these tag bytes.
const (
	tagRaw  byte = 0x00
	tagZstd byte = 0x01
)

type Compressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	enabled bool
}

func NewCompressor(level int, enabled bool) (*Compressor, error) {
	// The decoder is always available so objects written with compression on
	// stay readable after it is turned off.
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	if !enabled {
		return &Compressor{decoder: decoder}, nil
	}

	var encoderLevel zstd.EncoderLevel
	switch level {
	case 1:
		encoderLevel = zstd.SpeedFastest
	case 2:
		encoderLevel = zstd.SpeedDefault
	case 3:
		encoderLevel = zstd.SpeedBetterCompression
	default:
		encoderLevel = zstd.SpeedDefault
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(encoderLevel),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}

	return &Compressor{
		encoder: encoder,
		decoder: decoder,
		enabled: true,
	}, nil
}

// Compress returns data prefixed with a tag byte, zstd-compressed when that
// is enabled and actually saves space.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	if c.enabled && len(data) >= minSize {
		compressed := c.encoder.EncodeAll(data, []byte{tagZstd})
		if len(compressed) < len(data)+1 {
			return compressed, nil
		}
	}

	out := make([]byte, 0, len(data)+1)
	out = append(out, tagRaw)
	return append(out, data...), nil
}

// Decompress reverses Compress.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	switch data[0] {
	case tagRaw:
		return data[1:], nil
	case tagZstd:
		decompressed, err := c.decoder.DecodeAll(data[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return decompressed, nil
	default:
		return nil, fmt.Errorf("unknown payload tag %#x", data[0])
	}
}

func (c *Compressor) Close() error {
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	return nil
}
