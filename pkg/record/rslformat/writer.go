package rslformat

import (
	"errors"
	"fmt"
	"io"
)

// ErrInvalidMagic the file does not start with the RSL identifier.
var ErrInvalidMagic = errors.New("invalid file identifier")

// ErrUnsupportedVersion unsupported container version.
var ErrUnsupportedVersion = errors.New("unsupported version")

// Writer writes a recording in the RSL container format.
//
// Writing is forward-only except for the two documented backpatches:
// the firstFrameOffset field in the file header and the frameCount
// field of each streamInfo record.
type Writer struct {
	out io.WriteSeeker

	pos int64
}

// NewWriter creates a new Writer and writes the file header.
func NewWriter(out io.WriteSeeker, header FileHeader) (*Writer, error) {
	w := &Writer{out: out}

	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek start: %w", err)
	}
	if err := w.write(header.Marshal()); err != nil {
		return nil, fmt.Errorf("write file header: %w", err)
	}
	return w, nil
}

// Pos returns the current file position.
func (w *Writer) Pos() int64 {
	return w.pos
}

func (w *Writer) write(buf []byte) error {
	n, err := w.out.Write(buf)
	w.pos += int64(n)
	return err
}

func (w *Writer) writeChunk(id ChunkID, payload []byte) error {
	chunk := ChunkHeader{ID: id, Size: int32(len(payload))}
	if err := w.write(chunk.Marshal()); err != nil {
		return fmt.Errorf("write chunk header: %w", err)
	}
	if err := w.write(payload); err != nil {
		return fmt.Errorf("write chunk payload: %w", err)
	}
	return nil
}

// WriteDeviceInfo writes the device info chunk.
func (w *Writer) WriteDeviceInfo(info DeviceInfo) error {
	return w.writeChunk(ChunkDeviceInfo, info.Marshal())
}

// WriteSwInfo writes the software info chunk.
func (w *Writer) WriteSwInfo(info SwInfo) error {
	return w.writeChunk(ChunkSwInfo, info.Marshal())
}

// WriteCapabilities writes the capabilities chunk.
func (w *Writer) WriteCapabilities(caps []Capability) error {
	return w.writeChunk(ChunkCapabilities, MarshalCapabilities(caps))
}

// WriteMotionIntrinsics writes the motion intrinsics chunk.
func (w *Writer) WriteMotionIntrinsics(intrinsics MotionIntrinsics) error {
	return w.writeChunk(ChunkMotionIntrinsics, intrinsics.Marshal())
}

// WriteStreamInfos writes a single streamInfo chunk containing one
// record per stream. The returned slice holds the absolute file offset
// of each record's frameCount field, in input order.
func (w *Writer) WriteStreamInfos(infos []StreamInfo) ([]int64, error) {
	chunk := ChunkHeader{
		ID:   ChunkStreamInfo,
		Size: int32(StreamInfoSize * len(infos)),
	}
	if err := w.write(chunk.Marshal()); err != nil {
		return nil, fmt.Errorf("write chunk header: %w", err)
	}

	offsets := make([]int64, len(infos))
	for i, info := range infos {
		offsets[i] = w.pos + FrameCountFieldOffset
		if err := w.write(info.Marshal()); err != nil {
			return nil, fmt.Errorf("write stream info: %w", err)
		}
	}
	return offsets, nil
}

// WriteProperties writes the device options chunk.
func (w *Writer) WriteProperties(opts []DeviceOption) error {
	return w.writeChunk(ChunkProperties, MarshalDeviceOptions(opts))
}

// PatchFirstFrameOffset overwrites the file header's firstFrameOffset
// field with the current position and seeks back.
func (w *Writer) PatchFirstFrameOffset() error {
	firstFrame := w.pos
	if _, err := w.out.Seek(FirstFrameOffsetFieldOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seek header: %w", err)
	}
	buf := make([]byte, 4)
	putInt32(buf, int32(firstFrame))
	if _, err := w.out.Write(buf); err != nil {
		return fmt.Errorf("write offset: %w", err)
	}
	if _, err := w.out.Seek(firstFrame, io.SeekStart); err != nil {
		return fmt.Errorf("seek back: %w", err)
	}
	return nil
}

// PatchFrameCount overwrites a frameCount field previously reserved by
// WriteStreamInfos. Pos is not updated, nothing is appended after the
// frame counts are patched.
func (w *Writer) PatchFrameCount(fieldOffset int64, count uint32) error {
	if _, err := w.out.Seek(fieldOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seek frame count: %w", err)
	}
	buf := make([]byte, 4)
	putInt32(buf, int32(count))
	if _, err := w.out.Write(buf); err != nil {
		return fmt.Errorf("write frame count: %w", err)
	}
	return nil
}

// WriteSampleInfo sets info.Offset to the current position and writes
// the sampleInfo chunk.
func (w *Writer) WriteSampleInfo(info *SampleInfo) error {
	info.Offset = uint64(w.pos)
	return w.writeChunk(ChunkSampleInfo, info.Marshal())
}

// WriteFrameInfo writes a frameInfo chunk.
func (w *Writer) WriteFrameInfo(info FrameInfo) error {
	return w.writeChunk(ChunkFrameInfo, info.Marshal())
}

// WriteSampleData writes a sampleData chunk with a raw or encoded payload.
func (w *Writer) WriteSampleData(payload []byte) error {
	return w.writeChunk(ChunkSampleData, payload)
}

// WriteMotionData writes a motion reading as a sampleData chunk.
func (w *Writer) WriteMotionData(data MotionData) error {
	return w.writeChunk(ChunkSampleData, data.Marshal())
}

// WriteTimeStampData writes a timestamp event as a sampleData chunk.
func (w *Writer) WriteTimeStampData(data TimeStampData) error {
	return w.writeChunk(ChunkSampleData, data.Marshal())
}

func putInt32(buf []byte, v int32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}
