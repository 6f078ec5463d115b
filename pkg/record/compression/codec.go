// Package compression provides per-stream pixel payload codecs and the
// dispatcher that assigns them.
package compression

import (
	"errors"

	"sensrec/pkg/record/rslformat"
)

// ErrFeatureUnsupported no codec is registered for the stream.
var ErrFeatureUnsupported = errors.New("feature unsupported")

// Level compression effort. Zero is the algorithm default, higher
// values trade speed for ratio.
type Level int

// Codec compresses the pixel payloads of a single stream. Instances are
// not shared between streams, an algorithm may carry state from one
// frame to the next. Codecs are only ever called from the writer
// goroutine and need not be safe for concurrent use.
type Codec interface {
	// Encode compresses src, the raw pixel buffer of size stride*height.
	// The result never exceeds the algorithm's worst-case bound for
	// len(src).
	Encode(info rslformat.FrameInfo, src []byte) ([]byte, error)

	// Decode is the inverse of Encode. dstSize is the raw buffer size
	// from the frame info.
	Decode(src []byte, dstSize int) ([]byte, error)

	// CompressionType reports the algorithm.
	CompressionType() rslformat.CompressionType
}

// NoneCodec passes pixel payloads through unchanged.
type NoneCodec struct{}

// Encode returns a copy of src.
func (NoneCodec) Encode(_ rslformat.FrameInfo, src []byte) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// Decode returns a copy of src.
func (NoneCodec) Decode(src []byte, _ int) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// CompressionType .
func (NoneCodec) CompressionType() rslformat.CompressionType {
	return rslformat.CompressionNone
}
