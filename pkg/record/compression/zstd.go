package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"sensrec/pkg/record/rslformat"
)

// ZstdCodec compresses pixel payloads with Zstandard.
type ZstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstdCodec creates a Zstd codec.
func NewZstdCodec(level Level) (*ZstdCodec, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstdLevel(level)),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("new encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	return &ZstdCodec{enc: enc, dec: dec}, nil
}

func zstdLevel(level Level) zstd.EncoderLevel {
	switch {
	case level <= 0:
		return zstd.SpeedDefault
	case level == 1:
		return zstd.SpeedFastest
	case level == 2:
		return zstd.SpeedDefault
	case level == 3:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Encode compresses src.
func (c *ZstdCodec) Encode(_ rslformat.FrameInfo, src []byte) ([]byte, error) {
	return c.enc.EncodeAll(src, nil), nil
}

// Decode decompresses src.
func (c *ZstdCodec) Decode(src []byte, dstSize int) ([]byte, error) {
	return c.dec.DecodeAll(src, make([]byte, 0, dstSize))
}

// CompressionType .
func (c *ZstdCodec) CompressionType() rslformat.CompressionType {
	return rslformat.CompressionZstd
}
