package compression

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"sensrec/pkg/record/rslformat"
)

type blockCompressor interface {
	CompressBlock(src, dst []byte) (int, error)
}

// LZ4Codec compresses pixel payloads with the LZ4 block format.
//
// The compressor keeps its match table between frames of the stream.
// Payloads are always block-encoded, an incompressible payload may
// grow slightly.
type LZ4Codec struct {
	compressor blockCompressor
}

// NewLZ4Codec creates an LZ4 codec. Level zero selects the fast
// compressor, higher levels the HC variant.
func NewLZ4Codec(level Level) *LZ4Codec {
	if level <= 0 {
		return &LZ4Codec{compressor: &lz4.Compressor{}}
	}
	return &LZ4Codec{compressor: &lz4.CompressorHC{Level: lz4Level(level)}}
}

func lz4Level(level Level) lz4.CompressionLevel {
	levels := []lz4.CompressionLevel{
		lz4.Level1, lz4.Level2, lz4.Level3,
		lz4.Level4, lz4.Level5, lz4.Level6,
		lz4.Level7, lz4.Level8, lz4.Level9,
	}
	if int(level) > len(levels) {
		return lz4.Level9
	}
	return levels[level-1]
}

// Encode compresses src.
func (c *LZ4Codec) Encode(_ rslformat.FrameInfo, src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := c.compressor.CompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("compress block: %w", err)
	}
	return dst[:n], nil
}

// Decode decompresses src into a buffer of dstSize bytes.
func (c *LZ4Codec) Decode(src []byte, dstSize int) ([]byte, error) {
	dst := make([]byte, dstSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("uncompress block: %w", err)
	}
	return dst[:n], nil
}

// CompressionType .
func (c *LZ4Codec) CompressionType() rslformat.CompressionType {
	return rslformat.CompressionLZ4
}
