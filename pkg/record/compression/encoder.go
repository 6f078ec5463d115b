package compression

import (
	"fmt"

	"sensrec/pkg/record/rslformat"
)

// Encoder resolves a codec per stream and performs per-frame encoding.
// Codecs are created lazily through AddCodec and reused for the
// lifetime of the recording.
type Encoder struct {
	codecs map[int32]Codec
}

// NewEncoder creates an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{codecs: make(map[int32]Codec)}
}

// Policy selects the compression algorithm for a stream. Currently a
// fixed choice, the stream and format arguments are the extension point
// for a per-format policy.
func (e *Encoder) Policy(stream int32, format int32) rslformat.CompressionType {
	return rslformat.CompressionLZ4
}

// AddCodec registers a codec for the stream per the policy result.
// A no-op if the stream already has one.
func (e *Encoder) AddCodec(stream int32, format int32, level Level) error {
	if _, exists := e.codecs[stream]; exists {
		return nil
	}

	switch e.Policy(stream, format) {
	case rslformat.CompressionLZ4:
		e.codecs[stream] = NewLZ4Codec(level)
	case rslformat.CompressionZstd:
		codec, err := NewZstdCodec(level)
		if err != nil {
			return fmt.Errorf("new zstd codec: %w", err)
		}
		e.codecs[stream] = codec
	default:
		e.codecs[stream] = nil
	}
	return nil
}

// CompressionType reports the registered codec's algorithm. A stream
// without a codec reports none and its payloads are written raw.
func (e *Encoder) CompressionType(stream int32) rslformat.CompressionType {
	if codec, exists := e.codecs[stream]; exists && codec != nil {
		return codec.CompressionType()
	}
	return rslformat.CompressionNone
}

// EncodeFrame encodes a frame's pixel buffer with the stream's codec.
// Returns ErrFeatureUnsupported if the stream has no codec. Callers
// that observe CompressionNone should write the raw buffer instead of
// calling EncodeFrame.
func (e *Encoder) EncodeFrame(info rslformat.FrameInfo, src []byte) ([]byte, error) {
	codec, exists := e.codecs[info.Stream]
	if !exists || codec == nil {
		return nil, ErrFeatureUnsupported
	}
	return codec.Encode(info, src)
}

// Codec returns the registered codec for a stream, or nil.
func (e *Encoder) Codec(stream int32) Codec {
	return e.codecs[stream]
}
